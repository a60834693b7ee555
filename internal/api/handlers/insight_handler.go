package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/service"
)

type InsightHandler struct {
	service *service.InsightService
}

func NewInsightHandler(service *service.InsightService) *InsightHandler {
	return &InsightHandler{service: service}
}

type partInsightRequest struct {
	PartData domain.MonitoringRow `json:"part_data"`
}

type holisticInsightRequest struct {
	RekapAnalysis domain.MeetingDashboard `json:"rekap_analysis"`
}

type simulationInsightRequest struct {
	SimulationResult domain.SimulationResult `json:"simulation_result"`
}

func (h *InsightHandler) Monitoring(c *gin.Context) {
	var req partInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	text, err := h.service.PartInsight(c.Request.Context(), req.PartData)
	h.respond(c, text, err)
}

func (h *InsightHandler) Holistic(c *gin.Context) {
	var req holisticInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	text, err := h.service.HolisticInsight(c.Request.Context(), req.RekapAnalysis)
	h.respond(c, text, err)
}

func (h *InsightHandler) Simulation(c *gin.Context) {
	var req simulationInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	text, err := h.service.SimulationInsight(c.Request.Context(), req.SimulationResult)
	h.respond(c, text, err)
}

func (h *InsightHandler) respond(c *gin.Context, text string, err error) {
	if err != nil {
		respondError(c, "failed to generate insight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight_text": text})
}
