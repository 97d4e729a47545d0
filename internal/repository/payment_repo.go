package repository

import (
	"context"
	"time"

	"slotpay/internal/domain"
	"slotpay/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Transaction opens a transaction spanning the payment and appointment
// tables; the webhook confirmation path commits both or neither through it.
func (r *PaymentRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByAddress(ctx context.Context, address string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByAddressForUpdate re-reads the row under a lock inside tx so concurrent
// webhook deliveries for the same payment serialize.
func (r *PaymentRepository) GetByAddressForUpdate(tx *gorm.DB, address string) (*models.Payment, error) {
	var p models.Payment
	if err := lockForUpdate(tx).Where("address = ?", address).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ExpireStale moves every pending/partial payment past its deadline to
// EXPIRED and returns the affected rows. Confirmed rows are never touched.
func (r *PaymentRepository) ExpireStale(ctx context.Context, now time.Time) ([]models.Payment, error) {
	var stale []models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("status IN ?", []string{domain.PaymentPending, domain.PaymentPartial}).
			Where("expires_at < ?", now).
			Find(&stale).Error
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		ids := make([]uint, len(stale))
		for i := range stale {
			ids[i] = stale[i].ID
		}
		if err := tx.Model(&models.Payment{}).Where("id IN ?", ids).Update("status", domain.PaymentExpired).Error; err != nil {
			return err
		}
		for i := range stale {
			stale[i].Status = domain.PaymentExpired
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}
