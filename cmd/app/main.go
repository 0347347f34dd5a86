package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/djorgens2/blofin-data/internal/app"
	"github.com/djorgens2/blofin-data/internal/infra/blofin"
	"github.com/djorgens2/blofin-data/internal/lifecycle"
)

func main() {
	// Optional .env hydration before config load; absence is not an error.
	_ = godotenv.Load()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config
	api := cfg.API.Blofin

	signer := blofin.NewSigner(api.APIKey, api.SecretKey, api.Passphrase)
	defer signer.Wipe()

	client := blofin.NewClient(api.RestURL, signer)
	session := blofin.NewSession(signer)

	coord := lifecycle.New(client, client, session, bootstrap.Journal, lifecycle.Config{
		WSURL:          api.PrivateWSURL,
		InstID:         cfg.Trading.InstID,
		Channel:        cfg.Trading.Channel,
		MarginMode:     cfg.Trading.MarginMode,
		PositionSide:   cfg.Trading.PositionSide,
		Size:           cfg.Trading.Size,
		Leverage:       cfg.Trading.Leverage,
		ConfirmTimeout: time.Duration(cfg.Trading.ConfirmTimeoutSec) * time.Second,
	})

	if err := coord.Run(ctx); err != nil {
		slog.Error("round trip unsuccessful", "run", coord.RunID(), "state", coord.State().String(), slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("round trip complete", "run", coord.RunID(), "state", coord.State().String())
}
