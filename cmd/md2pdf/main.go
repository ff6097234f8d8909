// Command md2pdf converts Markdown files to PDF or HTML, prompting for the
// files, output format, theme and output name.
package main

import (
	"context"
	"os"

	"github.com/alnah/mdpress/internal/cli"
)

func main() {
	ctx, stop := cli.NotifyContext(context.Background())
	code := cli.RunInteractive(ctx, os.Args[1:], cli.DefaultEnv())
	stop()
	os.Exit(code)
}
