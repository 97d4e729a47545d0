package rates

import (
	"context"

	"github.com/shopspring/decimal"
)

// StaticSource returns a fixed quote; used in development and tests.
type StaticSource struct {
	Rate decimal.Decimal
	Err  error
}

func (s *StaticSource) Quote(ctx context.Context) (decimal.Decimal, error) {
	if s.Err != nil {
		return decimal.Zero, s.Err
	}
	return s.Rate, nil
}
