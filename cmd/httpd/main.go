// Command httpd runs the findings aggregation API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auditcloud/findings-api/internal/api"
	"github.com/auditcloud/findings-api/internal/config"
	"github.com/auditcloud/findings-api/internal/httpserver"
	"github.com/auditcloud/findings-api/internal/logger"
	"github.com/auditcloud/findings-api/internal/service"
	"github.com/auditcloud/findings-api/internal/sheets"
	"github.com/auditcloud/findings-api/internal/telemetry"
	"github.com/auditcloud/findings-api/internal/tracker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log := logger.Must(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting findings API",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.String("project", cfg.Tracker.Project),
	)

	trackerClient := tracker.NewClient(&cfg.Tracker, log)

	// The sheet views are optional; without credentials the rest of the API
	// still serves and those endpoints report the source as unavailable.
	var sheetReader service.SheetReader
	if cfg.Sheets.CredentialsFile != "" {
		sheetsClient, sheetsErr := sheets.NewClient(&cfg.Sheets, log)
		if sheetsErr != nil {
			log.Warn("Sheet service disabled", logger.Error(sheetsErr))
		} else {
			sheetReader = sheetsClient
		}
	} else {
		log.Warn("Sheet service disabled: no credentials file configured")
	}

	metrics := telemetry.NewMetrics()
	svc := service.NewInsightService(trackerClient, sheetReader, cfg, metrics, log)
	handler := api.NewHandler(svc, metrics, log)

	server := httpserver.New(&httpserver.Config{
		Port:           cfg.Service.Port,
		Debug:          cfg.Service.Debug,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		CORS: httpserver.CORSConfig{
			Enabled:          cfg.CORS.Enabled,
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
		},
	}, log, func(router *gin.Engine) {
		handler.RegisterRoutes(router)

		httpserver.RegisterHealthRoutes(router, httpserver.HealthOptions{
			ServiceName:    cfg.Service.Name,
			ServiceVersion: cfg.Service.Version,
			Checks: map[string]httpserver.HealthChecker{
				"tracker": httpserver.UpstreamHealthChecker("tracker", func() error {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return trackerClient.Ping(ctx)
				}),
			},
		})
	})

	if err := server.Run(context.Background()); err != nil {
		log.Error("Server exited with error", logger.Error(err))
		return 1
	}

	return 0
}
