// Command mdslide renders a Markdown file as a terminal slideshow.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mdslide/mdslide/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
