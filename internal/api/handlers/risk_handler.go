package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/service"
)

type RiskHandler struct {
	service *service.RiskDashboardService
}

func NewRiskHandler(service *service.RiskDashboardService) *RiskHandler {
	return &RiskHandler{service: service}
}

func (h *RiskHandler) GetDates(c *gin.Context) {
	dates, err := h.service.Dates(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch dates", err)
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, out)
}

// GetDashboard accepts ?date=YYYY-MM-DD and ?status= as repeated or
// comma-separated values, in English or traffic-light names.
func (h *RiskHandler) GetDashboard(c *gin.Context) {
	var filter domain.RiskDashboardFilter

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequest(c, "invalid date, expected YYYY-MM-DD", err)
			return
		}
		filter.Date = date
	}

	for _, value := range c.QueryArray("status") {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status, ok := domain.ParseStatus(part)
			if !ok {
				badRequest(c, "invalid status value", fmt.Errorf("unknown status %q", part))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to build risk dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// evaluateRequest keeps numeric fields optional so an omitted value reaches
// the evaluator as absent rather than zero.
type evaluateRequest struct {
	ObservedAt      *time.Time `json:"observed_at"`
	Section         string     `json:"destination_section"`
	Component       string     `json:"component_name"`
	AvailableStock  *float64   `json:"available_stock"`
	ConsumptionRate *float64   `json:"consumption_rate"`
	LeadTime        *float64   `json:"lead_time"`
}

func (r evaluateRequest) observation() domain.MaterialObservation {
	obs := domain.MaterialObservation{
		Section:         r.Section,
		Component:       r.Component,
		AvailableStock:  valueOrAbsent(r.AvailableStock),
		ConsumptionRate: valueOrAbsent(r.ConsumptionRate),
		LeadTime:        valueOrAbsent(r.LeadTime),
	}
	if r.ObservedAt != nil {
		obs.ObservedAt = *r.ObservedAt
	}
	return obs
}

func valueOrAbsent(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func (h *RiskHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid observation", err)
		return
	}

	obs := req.observation()
	assessment, err := h.service.Evaluate(c.Request.Context(), obs)
	if err != nil {
		respondError(c, "failed to evaluate observation", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"observation": obs,
		"assessment":  assessment,
	})
}
