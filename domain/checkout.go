package domain

// Checkout attempt state constants.
const (
	StateIdle             = "idle"
	StateSubmitting       = "submitting"
	StateSuccess          = "success"
	StateNeedsLogin       = "needs_login"
	StateNeedsProfileData = "needs_profile_data"
	StateFailed           = "failed"
)

// CheckoutRequest is the transient value submitted to start a checkout.
type CheckoutRequest struct {
	RequestInvoice bool `json:"request_invoice"`
}

// OutcomeKind tags the decoded result of a checkout creation call.
type OutcomeKind int

const (
	// OutcomeSuccess means the order was created and payment can proceed.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeAuthRequired means the user must log in first (interrupt, not failure).
	OutcomeAuthRequired
	// OutcomeProfileIncomplete means the customer profile is missing required
	// data (tax ID, address, or phone) and must be completed first.
	OutcomeProfileIncomplete
	// OutcomeFailed means the server rejected the checkout outright.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthRequired:
		return "auth_required"
	case OutcomeProfileIncomplete:
		return "profile_incomplete"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CheckoutOutcome is the tagged result of a checkout creation call, decoded
// once at the network boundary regardless of whether the server signalled it
// structurally or inside a free-text error body.
type CheckoutOutcome struct {
	Kind OutcomeKind

	// Result is set only when Kind is OutcomeSuccess.
	Result *CheckoutResult

	// Message is the server-supplied failure reason when Kind is OutcomeFailed.
	Message string
}

// CheckoutResult carries the successful checkout creation response.
type CheckoutResult struct {
	OrderID   string `json:"order_id"`
	InvoiceID string `json:"invoice_id,omitempty"`

	// Total is the amount due in cents, after any classification discount.
	Total int64 `json:"total"`

	// DiscountPct is the customer-tier discount percentage applied by the
	// server, zero when none applies.
	DiscountPct int `json:"classification_discount_pct,omitempty"`

	// SubtotalBeforeDiscount is the un-discounted subtotal in cents, shown
	// struck through next to the discount badge. Zero when no discount applies.
	SubtotalBeforeDiscount int64 `json:"subtotal_before_discount,omitempty"`
}

// HasDiscount reports whether a classification discount applies. Both the
// percentage and the pre-discount subtotal must be present: the client never
// computes either one.
func (r *CheckoutResult) HasDiscount() bool {
	return r != nil && r.DiscountPct > 0 && r.SubtotalBeforeDiscount > 0
}
