package checkout

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type OutcomeKind int

const (
	// OutcomeSkipped means another checkout was already in flight. Nothing
	// is shown to the user.
	OutcomeSkipped OutcomeKind = iota
	OutcomeSignInRequired
	OutcomeEmptyCart
	OutcomeTermsNotAccepted
	OutcomeSucceeded
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSignInRequired:
		return "sign-in-required"
	case OutcomeEmptyCart:
		return "empty-cart"
	case OutcomeTermsNotAccepted:
		return "terms-not-accepted"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	MsgSignInRequired    = "Please login to complete your order"
	MsgEmptyCart         = "Your cart is empty"
	MsgTermsRequired     = "Please agree to the terms and conditions"
	MsgSessionExpired    = "Please login to continue"
	MsgProductsGone      = "Some products in your cart are no longer available"
	MsgInsufficientStock = "Insufficient stock for some items"
	MsgOrderFailed       = "Failed to process order. Please try again."
)
