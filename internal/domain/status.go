package domain

// PaymentStatus represents the canonical status of a payment
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusPendingUserAction PaymentStatus = "PENDING_USER_ACTION"
	PaymentStatusAuthorized        PaymentStatus = "AUTHORIZED"
	PaymentStatusSuccess           PaymentStatus = "SUCCESS"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusCanceled          PaymentStatus = "CANCELED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusRefundFailed      PaymentStatus = "REFUND_FAILED"
	PaymentStatusError             PaymentStatus = "ERROR"

	// PaymentStatusUnknown tags a provider value outside the known vocabulary.
	// The raw provider string travels alongside in the gateway payload; it is
	// never coerced into a meaningful state.
	PaymentStatusUnknown PaymentStatus = "UNKNOWN"
)

// statusTransitions defines the legal edges of the payment state machine.
// States absent from the map are terminal.
var statusTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {
		PaymentStatusPendingUserAction,
		PaymentStatusAuthorized,
		PaymentStatusSuccess,
		PaymentStatusFailed,
		PaymentStatusError,
	},
	PaymentStatusPendingUserAction: {
		PaymentStatusAuthorized,
		PaymentStatusSuccess,
		PaymentStatusFailed,
		PaymentStatusCanceled,
	},
	PaymentStatusAuthorized: {
		PaymentStatusSuccess,
		PaymentStatusFailed,
	},
	PaymentStatusSuccess: {
		PaymentStatusRefunded,
		PaymentStatusPartiallyRefunded,
		PaymentStatusRefundFailed,
	},
	PaymentStatusPartiallyRefunded: {
		PaymentStatusRefunded,
		PaymentStatusPartiallyRefunded,
		PaymentStatusRefundFailed,
	},
	PaymentStatusRefundFailed: {
		PaymentStatusRefunded,
		PaymentStatusPartiallyRefunded,
	},
}

// CanTransition reports whether moving from one canonical status to another
// follows a legal edge. A self-transition is always allowed (idempotent
// status refresh).
func CanTransition(from, to PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave the status.
func (s PaymentStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0 && s != PaymentStatusUnknown
}

// IsRefundable reports whether a refund may be attempted from this status.
func (s PaymentStatus) IsRefundable() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusPartiallyRefunded
}

func (s PaymentStatus) String() string {
	return string(s)
}
