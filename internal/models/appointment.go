package models

import (
	"time"
)

type Appointment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Reference       string    `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	ClientID        string    `gorm:"size:64;not null;index" json:"client_id"`
	ProviderID      string    `gorm:"size:64;not null;index:idx_appointments_provider_start" json:"provider_id"`
	ServiceID       string    `gorm:"size:64;not null" json:"service_id"`
	StartAt         time.Time `gorm:"not null;index:idx_appointments_provider_start" json:"start_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"size:20;not null;index" json:"status"` // SCHEDULED, CONFIRMED, CANCELLED, COMPLETED
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// EndAt returns the exclusive end of the appointment window.
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the half-open windows [StartAt, EndAt) of two
// appointments intersect.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && a.EndAt().After(start)
}
