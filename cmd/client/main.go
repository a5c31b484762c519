package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/journal/internal/client/cli"
	"github.com/dmitrijs2005/journal/internal/client/config"
	"github.com/dmitrijs2005/journal/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	app := cli.NewApp(cfg, log)
	app.Run(ctx)

}
