package domain

// CartLine is one product's presence in the cart. UnitPrice is the
// authoritative server-supplied value in cents; the client never reprices.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartSnapshot is an immutable view of the server-owned cart. It is replaced
// wholesale on every successful read and never partially mutated locally:
// discount and stock rules live on the server, so correctness comes from
// re-fetching, not from client arithmetic.
type CartSnapshot struct {
	// Lines are in the server's insertion order, at most one per product.
	Lines []CartLine `json:"lines"`

	// Total is the server-computed cart total in cents.
	Total int64 `json:"total"`

	// TotalItemCount is the sum of quantities, used for badge display.
	TotalItemCount int `json:"total_item_count"`
}

// IsEmpty reports whether the snapshot holds no lines.
func (s *CartSnapshot) IsEmpty() bool {
	return s == nil || len(s.Lines) == 0
}

// FindLine returns the line for the given product, or nil if absent.
func (s *CartSnapshot) FindLine(productID string) *CartLine {
	if s == nil {
		return nil
	}
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot so callers can hold it across
// later refreshes without aliasing the mirror's state.
func (s *CartSnapshot) Clone() *CartSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Lines = make([]CartLine, len(s.Lines))
	copy(cp.Lines, s.Lines)
	return &cp
}
