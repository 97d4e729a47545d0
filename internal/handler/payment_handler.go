package handler

import (
	"errors"
	"net/http"
	"strconv"

	"slotpay/internal/domain"
	"slotpay/internal/models"
	"slotpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func respondPaymentError(c *gin.Context, err error) {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		xe *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &xe):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment service unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Create starts a payment request for one appointment.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req struct {
		AppointmentID uint   `json:"appointment_id" binding:"required"`
		ClientID      string `json:"client_id" binding:"required"`
		Description   string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.payments.CreatePaymentRequest(c.Request.Context(), req.AppointmentID, req.ClientID, req.Description)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, paymentView(p))
}

// CreateBulk starts one payment covering several appointments.
func (h *PaymentHandler) CreateBulk(c *gin.Context) {
	var req struct {
		AppointmentIDs []uint `json:"appointment_ids" binding:"required"`
		ClientID       string `json:"client_id" binding:"required"`
		CustomerCount  int    `json:"customer_count" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.payments.CreateBulkPaymentRequest(c.Request.Context(), req.AppointmentIDs, req.ClientID, req.CustomerCount)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, paymentView(p))
}

// Status reports one payment's lifecycle state.
func (h *PaymentHandler) Status(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	p, err := h.payments.GetPayment(c.Request.Context(), uint(id))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentView(p))
}

// ExpireOld runs the expiry sweep on demand.
func (h *PaymentHandler) ExpireOld(c *gin.Context) {
	count, err := h.payments.ExpireOldPayments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "expiry sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}

func paymentView(p *models.Payment) gin.H {
	amountCad := decimal.NewFromInt(p.AmountCents).Div(decimal.NewFromInt(100))
	amountXmr := decimal.Zero
	if atomic, err := decimal.NewFromString(p.AmountAtomic); err == nil {
		amountXmr = service.AtomicToCoins(atomic)
	}
	return gin.H{
		"id":            p.ID,
		"status":        p.Status,
		"address":       p.Address,
		"amountCad":     amountCad,
		"amountXmr":     amountXmr,
		"confirmations": p.Confirmations,
		"complete":      p.Status == domain.PaymentConfirmed,
		"expiresAt":     p.ExpiresAt,
	}
}
