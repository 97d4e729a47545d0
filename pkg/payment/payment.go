package payment

import (
	"context"
)

// AddressRequest asks the provider for a fresh receiving address tied to an
// expected amount in atomic units.
type AddressRequest struct {
	OrderID      string
	Description  string
	AmountAtomic string // piconero, decimal string
	CallbackURL  string
}

type AddressResponse struct {
	Address      string
	AmountAtomic string
}

// AddressStatus is the provider's view of a receiving address.
type AddressStatus struct {
	AmountReceived string // atomic units received so far
	Confirmations  int
	Complete       bool
}

type Provider interface {
	CreateAddress(ctx context.Context, req AddressRequest) (*AddressResponse, error)
	CheckAddress(ctx context.Context, address string) (*AddressStatus, error)
}
