// Command md2pdf-renderer is the HTTP rendering service md2pdf spawns for PDF
// output. It prints PDFs with headless Chrome and listens on 127.0.0.1:$PORT.
package main

import (
	"context"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/mdpress/internal/cli"
)

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := cli.NotifyContext(context.Background())
	code := cli.RunRenderer(ctx, os.Args[1:], cli.DefaultEnv())
	stop()
	os.Exit(code)
}
