package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/santhoseks/openmrs-core/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.NewRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
