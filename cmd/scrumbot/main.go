package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/scrum-bot/app"
	"github.com/Black-And-White-Club/scrum-bot/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	logger := application.Observability.Logger
	runErr := application.Run(ctx)

	logger.Info("Shutting down")
	if err := application.Close(); err != nil {
		logger.Error("Shutdown finished with errors", "error", err)
	}
	if runErr != nil {
		logger.Error("Application stopped with error", "error", runErr)
		os.Exit(1)
	}
	logger.Info("Application shut down gracefully")
}
