package service

import (
	"slotpay/internal/domain"

	"github.com/shopspring/decimal"
)

var atomicPerCoin = decimal.NewFromInt(domain.AtomicUnitsPerCoin)

// FiatToAtomic converts a CAD price (in cents) to atomic units at the given
// CAD-per-XMR rate, rounded to a whole atomic unit.
func FiatToAtomic(priceCents int64, rate decimal.Decimal) decimal.Decimal {
	cad := decimal.NewFromInt(priceCents).Div(decimal.NewFromInt(100))
	return cad.Div(rate).Mul(atomicPerCoin).Round(0)
}

// AtomicToFiat converts an atomic-unit amount back to CAD at the given rate.
func AtomicToFiat(atomic decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return atomic.Div(atomicPerCoin).Mul(rate)
}

// AtomicToCoins renders an atomic amount as whole coins for display.
func AtomicToCoins(atomic decimal.Decimal) decimal.Decimal {
	return atomic.Div(atomicPerCoin)
}
