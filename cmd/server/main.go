package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ppic-monitor/internal/api"
	"github.com/andresuchdata/ppic-monitor/internal/app"
	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/drive"
	"github.com/andresuchdata/ppic-monitor/internal/geo"
	"github.com/andresuchdata/ppic-monitor/internal/insight"
	"github.com/andresuchdata/ppic-monitor/internal/service"
	"github.com/andresuchdata/ppic-monitor/internal/sheets"
	"github.com/andresuchdata/ppic-monitor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx := context.Background()

	app.PullArtifacts(ctx, cfg.Storage)

	predictionCache, meetingCache := app.Caches(cfg.Cache)
	defer predictionCache.Close()
	defer meetingCache.Close()

	evaluator, err := app.Evaluator(ctx, cfg.Classifier, predictionCache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to build evaluator")
	}

	var (
		source      service.ObservationSource
		consumption service.ConsumptionLookup
	)
	data, err := app.LoadData(ctx, cfg)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Observation data unavailable, risk endpoints will report not ready")
		data = &app.Data{}
	} else {
		source, consumption = data.Source, data.Consumption
	}
	defer data.Close()

	var reader service.TableReader
	if r, err := sheets.NewReader(ctx, cfg.Sheets.CredentialsJSON, cfg.Sheets.SpreadsheetID); err != nil {
		logger.Log.Warn().Err(err).Msg("Google Sheets unavailable, monitoring endpoints will report not ready")
	} else {
		reader = r
	}

	var generator insight.Generator
	if g, err := insight.NewGemini(ctx, cfg.Insight.GeminiAPIKey, cfg.Insight.Model); err != nil {
		logger.Log.Warn().Err(err).Msg("Language model unavailable, insight endpoints will report not ready")
	} else {
		generator = g
	}

	holidays := geo.NewHolidayClient(cfg.Holidays.APIURL, nil)

	services := &api.Services{
		Risk: service.NewRiskDashboardService(source, evaluator),
		Simulation: service.NewSimulationService(service.SimulationDeps{
			Evaluator:   evaluator,
			Consumption: consumption,
			History:     source,
			Geocoder:    geo.NewGeocoder(cfg.Geo.NominatimURL, cfg.Geo.UserAgent, cfg.Geo.CountryCode, nil),
			Router:      geo.NewRouter(cfg.Geo.RoutingURL, cfg.Geo.RoutingAPIKey, nil),
			Holidays:    holidays,
		}, service.SimulationConfig{
			WarehouseName:    cfg.Geo.WarehouseName,
			Warehouse:        domain.Coordinates{Lat: cfg.Geo.WarehouseLat, Lon: cfg.Geo.WarehouseLon},
			TrafficFactorPct: cfg.Geo.TrafficFactorPct,
			Sections:         cfg.Geo.Sections,
		}),
		Monitoring: service.NewMonitoringService(
			reader,
			cfg.Sheets.MonitoringSheet,
			app.FeatureModel(cfg.Monitoring.CriticalityArtifactPath),
			app.FeatureModel(cfg.Monitoring.AnomalyArtifactPath),
			cfg.Data.WorkingDays,
		),
		Meeting: service.NewMeetingService(reader, cfg.Sheets.RecapSheet, meetingCache),
		Insight: service.NewInsightService(generator, cfg.Insight.Language),
		Holiday: service.NewHolidayService(holidays, cfg.Holidays.HorizonDays),
		Drive:   driveHandler(ctx, cfg, data),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("data_source", cfg.Data.Source).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// driveHandler is mounted only when Drive credentials and the postgres store
// are both available, since ingested files land in postgres.
func driveHandler(ctx context.Context, cfg *config.Config, data *app.Data) *drive.Handler {
	if data.Repository == nil {
		logger.Log.Info().Msg("Drive ingest disabled: DATA_SOURCE is not postgres")
		return nil
	}
	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Drive ingest disabled")
		return nil
	}
	ingest := drive.NewIngestService(driveService, data.Repository, cfg.Drive.DownloadDir)
	return drive.NewHandler(driveService, ingest)
}
