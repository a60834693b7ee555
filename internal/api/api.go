package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"

	"github.com/andresuchdata/ppic-monitor/internal/api/handlers"
	"github.com/andresuchdata/ppic-monitor/internal/api/middleware"
	"github.com/andresuchdata/ppic-monitor/internal/drive"
	"github.com/andresuchdata/ppic-monitor/internal/service"
)

// Services groups what the router serves. Nil entries leave their routes unregistered.
type Services struct {
	Risk       *service.RiskDashboardService
	Simulation *service.SimulationService
	Monitoring *service.MonitoringService
	Meeting    *service.MeetingService
	Insight    *service.InsightService
	Holiday    *service.HolidayService
	Drive      *drive.Handler
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.Risk != nil {
		riskHandler := handlers.NewRiskHandler(services.Risk)
		riskGroup := apiGroup.Group("/risk")
		{
			riskGroup.GET("/dates", riskHandler.GetDates)
			riskGroup.GET("/dashboard", riskHandler.GetDashboard)
			riskGroup.POST("/evaluate", riskHandler.Evaluate)
		}
	}

	if services.Simulation != nil {
		simulationHandler := handlers.NewSimulationHandler(services.Simulation)
		simulationGroup := apiGroup.Group("/simulation")
		{
			simulationGroup.GET("/options", simulationHandler.GetOptions)
			simulationGroup.POST("/eta", simulationHandler.EstimateETA)
			simulationGroup.POST("/run", simulationHandler.Run)
			simulationGroup.GET("/history", simulationHandler.GetHistory)
		}
	}

	if services.Holiday != nil {
		holidayHandler := handlers.NewHolidayHandler(services.Holiday)
		apiGroup.GET("/holidays/upcoming", holidayHandler.GetUpcoming)
	}

	if services.Monitoring != nil && services.Meeting != nil {
		monitoringHandler := handlers.NewMonitoringHandler(services.Monitoring, services.Meeting)
		monitoringGroup := apiGroup.Group("/monitoring")
		{
			monitoringGroup.GET("/data", monitoringHandler.GetMonitoringData)
			monitoringGroup.GET("/meeting_dashboard", monitoringHandler.GetMeetingDashboard)
		}
	}

	if services.Insight != nil {
		insightHandler := handlers.NewInsightHandler(services.Insight)
		insightGroup := apiGroup.Group("/insights")
		{
			insightGroup.POST("/monitoring", insightHandler.Monitoring)
			insightGroup.POST("/holistic", insightHandler.Holistic)
			insightGroup.POST("/simulation", insightHandler.Simulation)
		}
	}

	if services.Drive != nil {
		driveRouter := mux.NewRouter()
		services.Drive.RegisterRoutes(driveRouter)
		router.Any("/api/drive/*path", gin.WrapH(driveRouter))
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
