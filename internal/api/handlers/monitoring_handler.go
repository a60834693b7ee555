package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ppic-monitor/internal/service"
)

type MonitoringHandler struct {
	monitoring *service.MonitoringService
	meeting    *service.MeetingService
}

func NewMonitoringHandler(monitoring *service.MonitoringService, meeting *service.MeetingService) *MonitoringHandler {
	return &MonitoringHandler{monitoring: monitoring, meeting: meeting}
}

func (h *MonitoringHandler) GetMonitoringData(c *gin.Context) {
	rows, err := h.monitoring.MonitoringData(c.Request.Context())
	if err != nil {
		respondError(c, "failed to load monitoring data", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *MonitoringHandler) GetMeetingDashboard(c *gin.Context) {
	load := h.meeting.Dashboard
	if c.Query("refresh") == "true" {
		load = h.meeting.Refresh
	}
	dashboard, err := load(c.Request.Context())
	if err != nil {
		respondError(c, "failed to build meeting dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
