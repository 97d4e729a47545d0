package service

import (
	"slotpay/internal/models"

	"go.uber.org/zap"
)

// Notifier is told about terminal payment transitions after they commit so
// the chat-interface collaborator can message the client. Delivery itself is
// someone else's problem; implementations must not block.
type Notifier interface {
	PaymentConfirmed(p *models.Payment, appointmentIDs []uint)
	PaymentExpired(p *models.Payment)
}

// LogNotifier is the default Notifier; it only logs.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) PaymentConfirmed(p *models.Payment, appointmentIDs []uint) {
	n.Log.Info("payment confirmed",
		zap.Uint("payment_id", p.ID),
		zap.Uints("appointment_ids", appointmentIDs))
}

func (n *LogNotifier) PaymentExpired(p *models.Payment) {
	n.Log.Info("payment expired",
		zap.Uint("payment_id", p.ID),
		zap.String("client_id", p.ClientID))
}
