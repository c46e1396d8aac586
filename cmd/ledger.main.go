package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ledger-service/internal/config"
	"ledger-service/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("Ledger: No .env file found, relying on system env vars")
	}

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start ledger service", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("ledger service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("ledger service stopped")
}
