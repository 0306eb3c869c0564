// Package main starts the game coordination server.
//
// This process owns the store, the game services, and the HTTP API, so
// every client sees the same game state and live updates.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/louisbranch/assassin/internal/app"
	"github.com/louisbranch/assassin/internal/platform/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := app.ParseConfig()
	if err != nil {
		config.Exitf("parse config: %v", err)
	}
	log.SetPrefix("[ASSASSIN] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log.Default()); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
