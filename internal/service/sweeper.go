package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically expires stale payments. It is stateless and safe to
// run concurrently with webhook processing: expiry only ever targets rows
// that are not confirmed.
type Sweeper struct {
	payments *PaymentService
	timeout  time.Duration
	log      *zap.Logger
}

func NewSweeper(payments *PaymentService, log *zap.Logger) *Sweeper {
	return &Sweeper{payments: payments, timeout: time.Minute, log: log}
}

// Run performs one sweep and returns the number of payments expired.
func (s *Sweeper) Run(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.payments.ExpireOldPayments(ctx)
}

// Schedule registers the sweep on the given cron runner at the configured
// interval.
func (s *Sweeper) Schedule(c *cron.Cron, every time.Duration) error {
	_, err := c.AddFunc("@every "+every.String(), func() {
		if _, err := s.Run(context.Background()); err != nil {
			s.log.Error("expiry sweep failed", zap.Error(err))
		}
	})
	return err
}
