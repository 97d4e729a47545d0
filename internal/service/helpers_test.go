package service

import (
	"testing"

	"slotpay/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Appointment{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeNotifier counts terminal-transition callbacks.
type fakeNotifier struct {
	confirmed int
	expired   int
}

func (n *fakeNotifier) PaymentConfirmed(p *models.Payment, appointmentIDs []uint) { n.confirmed++ }
func (n *fakeNotifier) PaymentExpired(p *models.Payment)                          { n.expired++ }
