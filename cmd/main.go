package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/ui"
	"github.com/joho/godotenv"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	runner := NewRunner(RunnerOpts{Logger: logger, Palette: ui.DefaultPalette()})
	err := runner.app().Run(ctx, os.Args)
	stop()

	if err != nil {
		logger.Error("chartx failed", "error", err)
		os.Exit(1)
	}
}
