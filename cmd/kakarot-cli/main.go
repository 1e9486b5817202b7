package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kkrt-labs/kakarot-rpc-go/cmd/kakarot-cli/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
