package domain

type CheckoutStatus string

const (
	CheckoutStatusValidating CheckoutStatus = "VALIDATING"
	CheckoutStatusReserving  CheckoutStatus = "RESERVING"
	CheckoutStatusCommitting CheckoutStatus = "COMMITTING"
	CheckoutStatusCommitted  CheckoutStatus = "COMMITTED"
	CheckoutStatusAborted    CheckoutStatus = "ABORTED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusValidating: {CheckoutStatusReserving, CheckoutStatusAborted},
	CheckoutStatusReserving:  {CheckoutStatusCommitting, CheckoutStatusAborted},
	// a failing commit rolls the whole unit back
	CheckoutStatusCommitting: {CheckoutStatusCommitted, CheckoutStatusAborted},
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCommitted || s == CheckoutStatusAborted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type CheckoutResult struct {
	Order       *Order           `json:"order"`
	Status      CheckoutStatus   `json:"status"`
	Transitions []CheckoutStatus `json:"transitions"`
}
