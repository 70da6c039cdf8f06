package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/api"
	homeDB "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	hmKafka "github.com/mikermcconnell/HomeHealth/internal/home-manager/kafka"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/oracle"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/scheduling"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/services"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/templates"
	gorm_db "github.com/mikermcconnell/HomeHealth/pkg/db"
)

func main() {
	stdlog.Println("Home Manager Service starting...")

	if err := godotenv.Load(); err == nil {
		stdlog.Println("Loaded configuration from .env file.")
	}

	appCtx, appCancel := context.WithCancel(context.Background())

	gormDB, err := gorm_db.NewGormDB()
	if err != nil {
		stdlog.Fatalf("Failed to initialize database: %v", err)
	}
	stdlog.Println("Database initialized successfully.")

	stdlog.Println("Running database migrations...")
	if err := gorm_db.AutoMigrate(gormDB, homeDB.AllModels()...); err != nil {
		stdlog.Fatalf("Failed to migrate database: %v", err)
	}
	stdlog.Println("Database migration successful.")

	catalog, err := templates.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load template catalog: %v", err)
	}

	// The oracle is optional: without an API key the schedulers fall back
	// to their deterministic rules and the brainstorm serves built-ins.
	var scheduleOracle scheduling.Oracle
	var brainstormer services.Brainstormer
	oracleClient, err := oracle.NewClientFromEnv()
	switch {
	case err == nil:
		scheduleOracle = oracleClient
		brainstormer = oracleClient
		stdlog.Println("Oracle client configured; AI-assisted scheduling enabled.")
	case errors.Is(err, oracle.ErrNoAPIKey):
		stdlog.Println("No oracle API key set; running with fallback scheduling only.")
	default:
		stdlog.Fatalf("Failed to configure oracle client: %v", err)
	}

	taskEventsProducer := hmKafka.NewTaskEventsProducer()
	remindersProducer := hmKafka.NewRemindersProducer()

	scheduleService := services.NewScheduleService(gormDB, taskEventsProducer, scheduleOracle, catalog)
	lifecycleService := services.NewLifecycleService(gormDB, taskEventsProducer)
	projectService := services.NewProjectService(gormDB, brainstormer)

	completionService := services.NewCompletionService(lifecycleService)
	completionService.StartConsuming(appCtx)

	digestService, err := services.NewDigestService(appCtx, gormDB, remindersProducer)
	if err != nil {
		stdlog.Fatalf("Failed to create digest service: %v", err)
	}
	if err := digestService.Start(); err != nil {
		stdlog.Fatalf("Failed to start digest scheduler: %v", err)
	}

	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = ":8080"
	}

	hlog.SetOutput(os.Stdout)
	hlog.SetLevel(hlog.LevelInfo)

	h := server.Default(server.WithHostPorts(serverAddr), server.WithExitWaitTime(5*time.Second))

	api.RegisterRoutes(h.Engine,
		api.NewHouseholdHandler(gormDB, scheduleService),
		api.NewTaskHandler(lifecycleService),
		api.NewAssetHandler(gormDB, scheduleService, lifecycleService),
		api.NewProjectHandler(projectService),
		digestService,
	)

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		sig := <-signals
		hlog.Infof("Received signal: %s. Initiating graceful shutdown...", sig)

		appCancel()

		shutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer httpShutdownCancel()
		if err := h.Shutdown(shutdownCtx); err != nil {
			hlog.Errorf("Hertz server shutdown error: %v", err)
		} else {
			hlog.Info("Hertz server gracefully stopped.")
		}

		digestService.Stop()

		completionService.Close()
		hlog.Info("Completion consumer closed.")

		if err := taskEventsProducer.Close(); err != nil {
			hlog.Errorf("Task events producer close error: %v", err)
		}
		if err := remindersProducer.Close(); err != nil {
			hlog.Errorf("Reminders producer close error: %v", err)
		}
		hlog.Info("Kafka producers closed.")
		hlog.Info("Home Manager gracefully shut down.")
	}()

	hlog.Infof("Home Manager Service fully initialized and starting Hertz server on %s...", serverAddr)
	h.Spin()

	stdlog.Println("Home Manager Service has been shut down.")
}
