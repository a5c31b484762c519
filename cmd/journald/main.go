package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/journal/internal/devserver"
	"github.com/dmitrijs2005/journal/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := devserver.LoadConfig()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store := devserver.NewStore()
	if err := store.AddUser(cfg.Username, cfg.Password); err != nil {
		log.Error(ctx, "seeding user", "err", err)
		os.Exit(1)
	}

	srv := devserver.NewServer(cfg, store, log)
	if err := srv.Run(ctx); err != nil {
		log.Error(ctx, "server stopped", "err", err)
		os.Exit(1)
	}

}
