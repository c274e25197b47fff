// Command server runs the HTTP API: review scheduling, placement testing,
// learner statistics and health endpoints.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adaptivelang/srs-backend/internal/app"
)

func main() {
	// .env is optional; real deployments configure via environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
