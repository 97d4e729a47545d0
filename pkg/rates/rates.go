package rates

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source supplies a current CAD-per-XMR quote.
type Source interface {
	Quote(ctx context.Context) (decimal.Decimal, error)
}
