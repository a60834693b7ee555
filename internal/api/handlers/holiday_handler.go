package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ppic-monitor/internal/service"
)

type HolidayHandler struct {
	service *service.HolidayService
}

func NewHolidayHandler(service *service.HolidayService) *HolidayHandler {
	return &HolidayHandler{service: service}
}

func (h *HolidayHandler) GetUpcoming(c *gin.Context) {
	holidays, err := h.service.Upcoming(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch holidays", err)
		return
	}
	c.JSON(http.StatusOK, holidays)
}
