package handler

import (
	"errors"
	"net/http"

	"slotpay/internal/domain"
	"slotpay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentWebhookHandler struct {
	payments *service.PaymentService
	log      *zap.Logger
}

func NewPaymentWebhookHandler(payments *service.PaymentService, log *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{payments: payments, log: log}
}

// Handle processes provider payment notifications. Duplicate and
// out-of-order deliveries are expected: re-applying a no-op transition
// leaves the row unchanged.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	var payload struct {
		Address        string `json:"address"`
		AmountReceived string `json:"amount_received"`
		Confirmations  int    `json:"confirmations"`
		Complete       bool   `json:"complete"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	res, err := h.payments.ProcessWebhook(c.Request.Context(), service.WebhookNotification{
		Address:        payload.Address,
		AmountReceived: payload.AmountReceived,
		Confirmations:  payload.Confirmations,
		Complete:       payload.Complete,
	})
	if err != nil {
		var (
			ve *domain.ValidationError
			nf *domain.NotFoundError
		)
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		case errors.As(err, &nf):
			// Unknown address: log and acknowledge with 404, never crash.
			h.log.Warn("webhook for unknown address", zap.String("address", payload.Address))
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown address"})
		default:
			h.log.Error("webhook processing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": res.Status})
}
