package domain

const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentConfirmed = "CONFIRMED"
	AppointmentCancelled = "CANCELLED"
	AppointmentCompleted = "COMPLETED"
)

const (
	PaymentPending   = "PENDING"
	PaymentPartial   = "PARTIAL"
	PaymentConfirmed = "CONFIRMED"
	PaymentExpired   = "EXPIRED"
)

const (
	DayAvailable = "AVAILABLE"
	DayLimited   = "LIMITED"
	DayFull      = "FULL"
	DayClosed    = "CLOSED"
)

// AtomicUnitsPerCoin is the number of atomic units (piconero) in one whole XMR.
const AtomicUnitsPerCoin int64 = 1_000_000_000_000

// paymentTransitions is the allowed forward-transition table. CONFIRMED and
// EXPIRED are terminal: no outgoing edges.
var paymentTransitions = map[string][]string{
	PaymentPending:   {PaymentPartial, PaymentConfirmed, PaymentExpired},
	PaymentPartial:   {PaymentConfirmed, PaymentExpired},
	PaymentConfirmed: {},
	PaymentExpired:   {},
}

// CanTransitionPayment reports whether the status lattice permits moving from
// one status to another. Staying on the same status is always allowed (a
// refresh, not a transition).
func CanTransitionPayment(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatusTerminal reports whether no further transition is permitted.
func PaymentStatusTerminal(status string) bool {
	return status == PaymentConfirmed || status == PaymentExpired
}
