package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AppointmentID *uint      `gorm:"index" json:"appointment_id"` // nil for bulk payments
	ClientID      string     `gorm:"size:64;not null;index" json:"client_id"`
	Address       string     `gorm:"size:128;uniqueIndex;not null" json:"address"`
	AmountCents   int64      `gorm:"not null" json:"amount_cents"` // CAD cents
	// AmountAtomic and ExchangeRate are snapshotted at creation time and never
	// rewritten, so confirmation amounts stay reproducible after the market moves.
	AmountAtomic   string     `gorm:"size:40;not null" json:"amount_atomic"` // piconero, decimal string
	ExchangeRate   string     `gorm:"size:40;not null" json:"exchange_rate"` // CAD per XMR at creation
	Status         string     `gorm:"size:20;not null;index" json:"status"`  // PENDING, PARTIAL, CONFIRMED, EXPIRED
	AmountReceived string     `gorm:"size:40;not null;default:'0'" json:"amount_received"`
	Confirmations  int        `gorm:"not null;default:0" json:"confirmations"`
	ExpiresAt      time.Time  `gorm:"not null;index" json:"expires_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at"`
	Metadata       string     `gorm:"type:text;not null" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

const (
	MetadataSingle = "single"
	MetadataBulk   = "bulk"
)

// PaymentMetadata is the tagged variant stored in Payment.Metadata. A single
// payment covers one appointment; a bulk payment covers several and must
// confirm all of them atomically.
type PaymentMetadata struct {
	Kind           string `json:"kind"`
	AppointmentID  uint   `json:"appointment_id,omitempty"`
	AppointmentIDs []uint `json:"appointment_ids,omitempty"`
	CustomerCount  int    `json:"customer_count,omitempty"`
}

func SingleMetadata(appointmentID uint) PaymentMetadata {
	return PaymentMetadata{Kind: MetadataSingle, AppointmentID: appointmentID}
}

func BulkMetadata(appointmentIDs []uint, customerCount int) PaymentMetadata {
	return PaymentMetadata{Kind: MetadataBulk, AppointmentIDs: appointmentIDs, CustomerCount: customerCount}
}

// AppointmentRefs returns every appointment covered by the payment.
func (m PaymentMetadata) AppointmentRefs() []uint {
	if m.Kind == MetadataSingle {
		return []uint{m.AppointmentID}
	}
	return m.AppointmentIDs
}

func (m PaymentMetadata) Encode() (string, error) {
	if err := m.validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeMetadata parses and validates the stored variant. Validation happens
// here, at the deserialization boundary, so a malformed row fails loudly
// instead of drifting through the confirmation path.
func DecodeMetadata(raw string) (PaymentMetadata, error) {
	var m PaymentMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return PaymentMetadata{}, fmt.Errorf("payment metadata: %w", err)
	}
	if err := m.validate(); err != nil {
		return PaymentMetadata{}, err
	}
	return m, nil
}

func (m PaymentMetadata) validate() error {
	switch m.Kind {
	case MetadataSingle:
		if m.AppointmentID == 0 {
			return fmt.Errorf("payment metadata: single variant missing appointment_id")
		}
		if len(m.AppointmentIDs) > 0 || m.CustomerCount != 0 {
			return fmt.Errorf("payment metadata: single variant carries bulk fields")
		}
	case MetadataBulk:
		if len(m.AppointmentIDs) == 0 {
			return fmt.Errorf("payment metadata: bulk variant missing appointment_ids")
		}
		if m.CustomerCount < 1 {
			return fmt.Errorf("payment metadata: bulk variant has customer_count %d", m.CustomerCount)
		}
		if m.AppointmentID != 0 {
			return fmt.Errorf("payment metadata: bulk variant carries single fields")
		}
	default:
		return fmt.Errorf("payment metadata: unknown kind %q", m.Kind)
	}
	return nil
}
