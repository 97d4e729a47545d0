package handler

import (
	"net/http"
	"time"

	"slotpay/internal/service"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	booking *service.BookingService
}

func NewAvailabilityHandler(booking *service.BookingService) *AvailabilityHandler {
	return &AvailabilityHandler{booking: booking}
}

// Day returns the bookable start times and day status for one date.
func (h *AvailabilityHandler) Day(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	date, err := time.ParseInLocation("2006-01-02", raw, h.booking.Rules().Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	day, err := h.booking.DayAvailability(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute availability"})
		return
	}
	c.JSON(http.StatusOK, day)
}
