package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crypto_converter/internal/app"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: app [api|consumer]")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	mode := os.Args[1]
	if mode != "api" && mode != "consumer" {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", mode)
		usage()
	}

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(mode); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch mode {
	case "consumer":
		err = app.RunConsumer(ctx, bootstrap)
	case "api":
		err = app.RunAPI(ctx, bootstrap)
	}
	if err != nil {
		slog.Error("Run failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}
