package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotpay/config"
	"slotpay/internal/domain"
	"slotpay/internal/models"
	"slotpay/internal/repository"
	"slotpay/internal/service"
	"slotpay/pkg/payment"
	"slotpay/pkg/rates"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB, *service.PaymentService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Appointment{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := service.NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewAppointmentRepository(db),
		payment.NewStubProvider(),
		rates.NewCache(&rates.StaticSource{Rate: decimal.NewFromInt(500)}, time.Minute, 1),
		config.PaymentConfig{PriceCents: 25000, Window: 30 * time.Minute},
		&service.LogNotifier{Log: zap.NewNop()},
		zap.NewNop(),
	)

	r := gin.New()
	r.POST("/api/v1/payments/webhook", NewPaymentWebhookHandler(svc, zap.NewNop()).Handle)
	return r, db, svc
}

func postWebhook(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_ConfirmsPayment(t *testing.T) {
	r, db, svc := newWebhookRouter(t)

	appt := &models.Appointment{
		Reference:       "ref-1",
		ClientID:        "client-1",
		ProviderID:      "default",
		ServiceID:       "standard",
		StartAt:         time.Date(2030, 6, 5, 11, 0, 0, 0, time.UTC),
		DurationMinutes: 90,
		Status:          domain.AppointmentScheduled,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	p, err := svc.CreatePaymentRequest(context.Background(), appt.ID, "client-1", "booking")
	if err != nil {
		t.Fatalf("CreatePaymentRequest: %v", err)
	}

	w := postWebhook(t, r, gin.H{
		"address":         p.Address,
		"amount_received": p.AmountAtomic,
		"confirmations":   1,
		"complete":        true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != domain.PaymentConfirmed {
		t.Errorf("response = %+v", resp)
	}

	var got models.Payment
	if err := db.First(&got, p.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if got.Status != domain.PaymentConfirmed {
		t.Errorf("payment status = %s, want %s", got.Status, domain.PaymentConfirmed)
	}
}

func TestWebhookHandler_UnknownAddress(t *testing.T) {
	r, _, _ := newWebhookRouter(t)
	w := postWebhook(t, r, gin.H{"address": "nope", "complete": true})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestWebhookHandler_RejectsBadPayload(t *testing.T) {
	r, _, _ := newWebhookRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", w.Code)
	}

	w = postWebhook(t, r, gin.H{"amount_received": "123"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing address: status = %d, want 400", w.Code)
	}

	w = postWebhook(t, r, gin.H{"address": "addr", "amount_received": "not-a-number"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad amount: status = %d, want 400", w.Code)
	}
}
