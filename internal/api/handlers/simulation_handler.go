package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/service"
)

type SimulationHandler struct {
	service *service.SimulationService
}

func NewSimulationHandler(service *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

func (h *SimulationHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Options())
}

type etaRequest struct {
	Origin string `json:"origin"`
}

func (h *SimulationHandler) EstimateETA(c *gin.Context) {
	var req etaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	estimate, err := h.service.EstimateLeadTime(c.Request.Context(), req.Origin)
	if err != nil {
		respondError(c, "failed to estimate lead time", err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

type runRequest struct {
	Section   string   `json:"destination_section"`
	Component string   `json:"component_name"`
	Stock     *float64 `json:"available_stock"`
	LeadTime  *float64 `json:"lead_time"`
}

func (h *SimulationHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if req.LeadTime == nil {
		// the lead time comes from a prior ETA estimate
		respondError(c, "estimate the lead time before running the analysis", domain.NewMissingFieldError("lead_time"))
		return
	}
	if req.Stock == nil {
		respondError(c, "available stock is required", domain.NewMissingFieldError("available_stock"))
		return
	}

	result, err := h.service.Simulate(c.Request.Context(), service.SimulationRequest{
		Section:   req.Section,
		Component: req.Component,
		Stock:     *req.Stock,
		LeadTime:  *req.LeadTime,
	})
	if err != nil {
		message := "failed to run simulation"
		if errors.Is(err, service.ErrNoConsumptionData) {
			message = "no consumption data for this component at this section"
		}
		respondError(c, message, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SimulationHandler) GetHistory(c *gin.Context) {
	section := strings.TrimSpace(c.Query("section"))
	component := strings.TrimSpace(c.Query("component"))

	var missing []string
	if section == "" {
		missing = append(missing, "section")
	}
	if component == "" {
		missing = append(missing, "component")
	}
	if len(missing) > 0 {
		respondError(c, "section and component are required", domain.NewMissingFieldError(missing...))
		return
	}

	points, err := h.service.History(c.Request.Context(), section, component)
	if err != nil {
		respondError(c, "failed to fetch buffer history", err)
		return
	}
	c.JSON(http.StatusOK, points)
}
