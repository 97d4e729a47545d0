package repository

import (
	"context"
	"fmt"
	"time"

	"slotpay/internal/domain"
	"slotpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// lockForUpdate appends FOR UPDATE on dialects that support row locks.
// sqlite (tests) has none; its single-writer transactions serialize anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

var activeStatuses = []string{
	domain.AppointmentScheduled,
	domain.AppointmentConfirmed,
	domain.AppointmentCompleted,
}

// CreateGuarded runs the overlap-check-and-insert in one transaction. It
// locks every non-cancelled appointment of the provider's day, hands them to
// check, and inserts only when check returns nil — so two concurrent requests
// for the same window cannot both commit.
func (r *AppointmentRepository) CreateGuarded(
	ctx context.Context,
	appt *models.Appointment,
	dayStart, dayEnd time.Time,
	check func(existing []models.Appointment) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Appointment
		err := lockForUpdate(tx).
			Where("provider_id = ? AND status IN ?", appt.ProviderID, activeStatuses).
			Where("start_at >= ? AND start_at < ?", dayStart, dayEnd).
			Order("start_at ASC").
			Find(&existing).Error
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}
		return tx.Create(appt).Error
	})
}

// ListActiveDay returns the provider's non-cancelled appointments with a
// start inside [dayStart, dayEnd), ordered by start time.
func (r *AppointmentRepository) ListActiveDay(ctx context.Context, providerID string, dayStart, dayEnd time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND status IN ?", providerID, activeStatuses).
		Where("start_at >= ? AND start_at < ?", dayStart, dayEnd).
		Order("start_at ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) GetByReference(ctx context.Context, ref string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// ConfirmAll flips every listed appointment to CONFIRMED inside the caller's
// transaction. All-or-nothing: if any id is missing or cancelled the update
// count comes up short and the whole transaction rolls back.
func (r *AppointmentRepository) ConfirmAll(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("confirm appointments: empty id set")
	}
	var confirmable int64
	err := tx.Model(&models.Appointment{}).
		Where("id IN ? AND status IN ?", ids, []string{domain.AppointmentScheduled, domain.AppointmentConfirmed}).
		Count(&confirmable).Error
	if err != nil {
		return err
	}
	if confirmable != int64(len(ids)) {
		return fmt.Errorf("confirm appointments: only %d of %d confirmable", confirmable, len(ids))
	}
	return tx.Model(&models.Appointment{}).
		Where("id IN ? AND status = ?", ids, domain.AppointmentScheduled).
		Update("status", domain.AppointmentConfirmed).Error
}
