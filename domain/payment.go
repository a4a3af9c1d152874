package domain

// PaymentMethod is one entry in the server's ordered method list.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PaymentInput holds the user's payment submission.
type PaymentInput struct {
	// Amount is the payment amount in cents. Must not exceed the total due;
	// the bound is enforced as an input constraint, never by recomputing the
	// server-owned total.
	Amount int64 `json:"amount" validate:"required,gt=0"`

	// MethodID is the selected payment method.
	MethodID string `json:"method_id" validate:"required"`
}
