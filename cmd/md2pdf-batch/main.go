// Command md2pdf-batch converts Markdown files to PDF or HTML without
// prompting. See md2pdf-batch --help.
package main

import (
	"context"
	"os"

	"github.com/alnah/mdpress/internal/cli"
)

func main() {
	ctx, stop := cli.NotifyContext(context.Background())
	code := cli.RunBatch(ctx, os.Args[1:], cli.DefaultEnv())
	stop()
	os.Exit(code)
}
