package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joelcalolo/MoFleet-sub000/internal/app"
	"github.com/joelcalolo/MoFleet-sub000/internal/config"
	"github.com/joelcalolo/MoFleet-sub000/internal/jobs"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sync-vehicle-availability', 'all')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	logger.Info("Starting MoFleet cronjob runner...", "log_level", cfg.Log.Level, "store", cfg.Store.Backend)

	backend, err := app.OpenBackend(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer backend.Close()

	jobRunner := jobs.NewJobRunner(backend.Stores, app.NewNotifier(cfg), cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			backend.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and reports whether the name was known.
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "sync-vehicle-availability":
		jobRunner.SyncVehicleAvailability()
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - sync-vehicle-availability\n")
		fmt.Printf("  - send-overdue-reminders\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}
