package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"hfcheck/internal"
	"hfcheck/internal/config"
	"hfcheck/internal/container"
	"hfcheck/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	defer logger.Sync()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		return
	}
	defer appContainer.Shutdown()

	for _, src := range appConfig.Sources {
		logger.Info("Configured source %s: %s", src.Name, src.Location)
	}

	server := ui.NewServer(appContainer.Audits, ui.Options{
		GinMode:  appConfig.Server.GinMode,
		Workbook: appContainer.Workbook,
		Markdown: appContainer.Markdown,
	}, appContainer.Metrics, logger.With("component", "api"))

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Error("pprof server failed: %v", err)
			}
		}()
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		logger.Error("Server stopped: %v", err)
	}
}
