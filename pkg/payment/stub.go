package payment

import (
	"context"
	"fmt"
	"sync"
)

// StubProvider is a deterministic in-memory provider for development and
// tests; statuses can be seeded per address.
type StubProvider struct {
	mu       sync.Mutex
	counter  int
	statuses map[string]AddressStatus
}

func NewStubProvider() *StubProvider {
	return &StubProvider{statuses: make(map[string]AddressStatus)}
}

func (s *StubProvider) CreateAddress(ctx context.Context, req AddressRequest) (*AddressResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	addr := fmt.Sprintf("stub_%s_%d", req.OrderID, s.counter)
	s.statuses[addr] = AddressStatus{AmountReceived: "0"}
	return &AddressResponse{Address: addr, AmountAtomic: req.AmountAtomic}, nil
}

func (s *StubProvider) CheckAddress(ctx context.Context, address string) (*AddressStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[address]
	if !ok {
		return nil, fmt.Errorf("stub: unknown address %s", address)
	}
	return &st, nil
}

// SetStatus seeds the reported state for an address.
func (s *StubProvider) SetStatus(address string, st AddressStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[address] = st
}
