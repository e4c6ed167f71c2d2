// Command maeumctl is a terminal client for the Maeumssi API. Its watch mode
// hosts the notification center and renders toasts, banners and modals.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(config.Load(), os.Stdin, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
