package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotpay/config"
	"slotpay/internal/domain"
	"slotpay/internal/models"
	"slotpay/internal/repository"
	"slotpay/pkg/payment"
	"slotpay/pkg/rates"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService owns the payment lifecycle: creation of single and bulk
// payment requests, webhook-driven transitions, and expiry of stale rows.
type PaymentService struct {
	payments *repository.PaymentRepository
	appts    *repository.AppointmentRepository
	provider payment.Provider
	rates    *rates.Cache
	cfg      config.PaymentConfig
	notifier Notifier
	log      *zap.Logger
}

func NewPaymentService(
	payments *repository.PaymentRepository,
	appts *repository.AppointmentRepository,
	provider payment.Provider,
	rateCache *rates.Cache,
	cfg config.PaymentConfig,
	notifier Notifier,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		appts:    appts,
		provider: provider,
		rates:    rateCache,
		cfg:      cfg,
		notifier: notifier,
		log:      log,
	}
}

// CreatePaymentRequest locks in the current exchange rate, obtains a fresh
// receiving address and persists a PENDING payment covering one appointment.
// Fails closed: if the rate or the address cannot be obtained, no row is
// written.
func (s *PaymentService) CreatePaymentRequest(ctx context.Context, appointmentID uint, clientID, description string) (*models.Payment, error) {
	if appointmentID == 0 {
		return nil, domain.NewValidationError("appointment_id is required")
	}
	if _, err := s.appts.GetByID(ctx, appointmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{What: "appointment"}
		}
		return nil, err
	}
	meta := models.SingleMetadata(appointmentID)
	p, err := s.create(ctx, &appointmentID, clientID, description, s.cfg.PriceCents, meta)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateBulkPaymentRequest persists one PENDING payment whose confirmation
// must flip every listed appointment; the amount scales with customerCount.
func (s *PaymentService) CreateBulkPaymentRequest(ctx context.Context, appointmentIDs []uint, clientID string, customerCount int) (*models.Payment, error) {
	if len(appointmentIDs) == 0 {
		return nil, domain.NewValidationError("appointment_ids must not be empty")
	}
	if customerCount < 1 {
		return nil, domain.NewValidationError("customer_count must be at least 1")
	}
	found, err := s.appts.ListByIDs(ctx, appointmentIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(appointmentIDs) {
		return nil, &domain.NotFoundError{What: "appointment"}
	}
	meta := models.BulkMetadata(appointmentIDs, customerCount)
	desc := fmt.Sprintf("bulk booking, %d customers", customerCount)
	return s.create(ctx, nil, clientID, desc, s.cfg.PriceCents*int64(customerCount), meta)
}

func (s *PaymentService) create(ctx context.Context, appointmentID *uint, clientID, description string, amountCents int64, meta models.PaymentMetadata) (*models.Payment, error) {
	rate, err := s.rates.Current(ctx)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "exchange-rate", Err: err}
	}
	amountAtomic := FiatToAtomic(amountCents, rate)

	callback := ""
	if s.cfg.CallbackBaseURL != "" {
		callback = s.cfg.CallbackBaseURL + "/api/v1/payments/webhook"
	}
	orderID := fmt.Sprintf("slotpay-%s", uuid.NewString())
	addr, err := s.provider.CreateAddress(ctx, payment.AddressRequest{
		OrderID:      orderID,
		Description:  description,
		AmountAtomic: amountAtomic.String(),
		CallbackURL:  callback,
	})
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "payment-provider", Err: err}
	}

	encoded, err := meta.Encode()
	if err != nil {
		return nil, err
	}
	p := &models.Payment{
		AppointmentID:  appointmentID,
		ClientID:       clientID,
		Address:        addr.Address,
		AmountCents:    amountCents,
		AmountAtomic:   amountAtomic.String(),
		ExchangeRate:   rate.String(),
		Status:         domain.PaymentPending,
		AmountReceived: "0",
		ExpiresAt:      time.Now().Add(s.cfg.Window),
		Metadata:       encoded,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("payment request created",
		zap.Uint("payment_id", p.ID),
		zap.String("address", p.Address),
		zap.String("amount_atomic", p.AmountAtomic),
		zap.String("rate", p.ExchangeRate))
	return p, nil
}

// GetPayment returns the payment row for the status endpoint.
func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{What: "payment"}
		}
		return nil, err
	}
	return p, nil
}

// CheckPaymentStatus queries the provider for an address; read-only, no
// state mutation.
func (s *PaymentService) CheckPaymentStatus(ctx context.Context, address string) (*payment.AddressStatus, error) {
	st, err := s.provider.CheckAddress(ctx, address)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "payment-provider", Err: err}
	}
	return st, nil
}

// WebhookNotification is the parsed inbound provider notification.
type WebhookNotification struct {
	Address        string
	AmountReceived string
	Confirmations  int
	Complete       bool
}

type WebhookResult struct {
	PaymentID uint   `json:"paymentId"`
	Status    string `json:"status"`
	Complete  bool   `json:"complete"`
}

// ProcessWebhook resolves the notification to a payment row, applies the
// state transition under a row lock and, on a transition into CONFIRMED,
// confirms the covered appointment(s) in the same transaction. Safe to
// re-invoke with the same or stale payload.
func (s *PaymentService) ProcessWebhook(ctx context.Context, n WebhookNotification) (*WebhookResult, error) {
	if n.Address == "" {
		return nil, domain.NewValidationError("address is required")
	}
	received := decimal.Zero
	if n.AmountReceived != "" {
		var err error
		received, err = decimal.NewFromString(n.AmountReceived)
		if err != nil || received.IsNegative() {
			return nil, domain.NewValidationError("amount_received is not a valid amount")
		}
	}
	obs := Observation{AmountReceived: received, Confirmations: n.Confirmations, Complete: n.Complete}

	var (
		result       WebhookResult
		confirmedNow *models.Payment
		confirmedIDs []uint
	)
	err := s.payments.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := s.payments.GetByAddressForUpdate(tx, n.Address)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{What: "payment"}
			}
			return err
		}
		t := ApplyTransition(p.Status, obs)
		switch {
		case t.Confirmed:
			now := time.Now()
			meta, err := models.DecodeMetadata(p.Metadata)
			if err != nil {
				return err
			}
			ids := meta.AppointmentRefs()
			updates := map[string]interface{}{
				"status":          domain.PaymentConfirmed,
				"amount_received": obs.AmountReceived.String(),
				"confirmations":   obs.Confirmations,
				"confirmed_at":    &now,
			}
			if err := tx.Model(p).Updates(updates).Error; err != nil {
				return err
			}
			// All-or-nothing: a short update count fails the whole
			// transaction, rolling the payment status back too.
			if err := s.appts.ConfirmAll(tx, ids); err != nil {
				return err
			}
			confirmedNow = p
			confirmedIDs = ids
		case t.Changed:
			updates := map[string]interface{}{
				"status":          t.Status,
				"amount_received": obs.AmountReceived.String(),
				"confirmations":   obs.Confirmations,
			}
			if err := tx.Model(p).Updates(updates).Error; err != nil {
				return err
			}
		case t.RefreshConfirmations && obs.Confirmations > p.Confirmations:
			if err := tx.Model(p).Update("confirmations", obs.Confirmations).Error; err != nil {
				return err
			}
		}
		result = WebhookResult{
			PaymentID: p.ID,
			Status:    t.Status,
			Complete:  t.Status == domain.PaymentConfirmed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if confirmedNow != nil {
		s.log.Info("payment confirmed",
			zap.Uint("payment_id", confirmedNow.ID),
			zap.Uints("appointment_ids", confirmedIDs))
		s.notifier.PaymentConfirmed(confirmedNow, confirmedIDs)
	}
	return &result, nil
}

// ExpireOldPayments moves every pending/partial payment past its deadline to
// EXPIRED and returns the count. Confirmed rows are never touched; the
// operation is re-runnable and safe alongside webhook processing.
func (s *PaymentService) ExpireOldPayments(ctx context.Context) (int64, error) {
	expired, err := s.payments.ExpireStale(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for i := range expired {
		s.notifier.PaymentExpired(&expired[i])
	}
	if len(expired) > 0 {
		s.log.Info("expired stale payments", zap.Int("count", len(expired)))
	}
	return int64(len(expired)), nil
}
