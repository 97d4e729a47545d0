package handler

import (
	"errors"
	"net/http"
	"time"

	"slotpay/internal/domain"
	"slotpay/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	booking *service.BookingService
}

func NewBookingHandler(booking *service.BookingService) *BookingHandler {
	return &BookingHandler{booking: booking}
}

// Book creates a SCHEDULED appointment, or answers 409 with the structured
// reason when the slot was lost so the caller re-renders fresh availability.
func (h *BookingHandler) Book(c *gin.Context) {
	var req struct {
		ClientID  string `json:"client_id" binding:"required"`
		ServiceID string `json:"service_id" binding:"required"`
		StartAt   string `json:"start_at" binding:"required"` // RFC 3339
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_at must be RFC 3339"})
		return
	}
	appt, unavailable, err := h.booking.Book(c.Request.Context(), req.ClientID, req.ServiceID, start)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking failed, try again"})
		return
	}
	if unavailable != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "slot_unavailable", "reason": unavailable.Reason})
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// Get looks up an appointment by its external reference.
func (h *BookingHandler) Get(c *gin.Context) {
	appt, err := h.booking.GetByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, appt)
}
