package service

import (
	"context"
	"testing"
	"time"

	"slotpay/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func TestSweeperSchedule(t *testing.T) {
	f := newPaymentFixture(t)
	s := NewSweeper(f.svc, zap.NewNop())

	c := cron.New()
	if err := s.Schedule(c, 5*time.Minute); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("cron entries = %d, want 1", len(c.Entries()))
	}
}

func TestSweeperRun(t *testing.T) {
	f := newPaymentFixture(t)
	appt := f.seedAppointment(t, testDay.Add(11*time.Hour))
	p, err := f.svc.CreatePaymentRequest(context.Background(), appt.ID, "client-1", "booking")
	if err != nil {
		t.Fatalf("CreatePaymentRequest: %v", err)
	}
	f.db.Model(&models.Payment{}).Where("id = ?", p.ID).
		Update("expires_at", time.Now().Add(-time.Hour))

	s := NewSweeper(f.svc, zap.NewNop())
	count, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
