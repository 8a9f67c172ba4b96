package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/fedauth/internal/emulator/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fedauth-emulator:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	emulator, err := app.New(app.LoadConfig())
	if err != nil {
		return err
	}
	return emulator.Run(ctx)
}
