package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/di"
	"github.com/mikey/email-triage-dashboard/internal/factory"
	"github.com/mikey/email-triage-dashboard/internal/ports"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (searches default locations when empty)")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	intakes []ports.Intake,
	service *core.ClassificationService,
	classifiers *factory.ClassifierFactory,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	logger.Info("Starting email dashboard", zap.String("model", service.ModelName()))

	// Start the intakes, unwinding the ones already running on failure
	for i, intake := range intakes {
		if err := intake.Start(); err != nil {
			logger.Error("Failed to start intake", zap.Error(err))
			for _, started := range intakes[:i] {
				_ = started.Stop()
			}
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	for _, intake := range intakes {
		if err := intake.Stop(); err != nil {
			logger.Error("Failed to stop intake", zap.Error(err))
		}
	}

	// Close provider clients that hold connections
	if err := classifiers.Close(); err != nil {
		logger.Error("Failed to close classifier clients", zap.Error(err))
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
