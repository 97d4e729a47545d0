package service

import (
	"slotpay/internal/domain"

	"github.com/shopspring/decimal"
)

// Observation is the set of facts a provider webhook (or a status poll)
// reports about a receiving address.
type Observation struct {
	AmountReceived decimal.Decimal
	Confirmations  int
	Complete       bool
}

// Transition is the outcome of applying an Observation to a payment status.
type Transition struct {
	Status    string
	Changed   bool // status or received amount must be persisted
	Confirmed bool // entered CONFIRMED in this application
	// RefreshConfirmations allows the confirmation count of an already
	// confirmed payment to be updated without reopening the state machine.
	RefreshConfirmations bool
}

// ApplyTransition computes the next payment status from the current one and
// the observed facts. Pure and side-effect-free; callers persist the result.
//
//	current    | complete      | received>0  | received==0
//	PENDING    | CONFIRMED     | PARTIAL     | PENDING
//	PARTIAL    | CONFIRMED     | PARTIAL     | PARTIAL
//	CONFIRMED  | no-op         | no-op       | no-op
//	EXPIRED    | no-op         | no-op       | no-op
func ApplyTransition(current string, obs Observation) Transition {
	if domain.PaymentStatusTerminal(current) {
		return Transition{
			Status:               current,
			RefreshConfirmations: current == domain.PaymentConfirmed,
		}
	}
	if obs.Complete {
		// The lattice always permits pending/partial -> confirmed, but the
		// table is still consulted so a drifted row cannot move.
		if !domain.CanTransitionPayment(current, domain.PaymentConfirmed) {
			return Transition{Status: current}
		}
		return Transition{Status: domain.PaymentConfirmed, Changed: true, Confirmed: true}
	}
	if obs.AmountReceived.IsPositive() {
		return Transition{Status: domain.PaymentPartial, Changed: true}
	}
	return Transition{Status: current}
}
