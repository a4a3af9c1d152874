// Package pending persists an in-flight cart across a redirect boundary.
// When checkout is interrupted by login or profile completion, the current
// cart lines are saved under one fixed key; the redirect target takes them
// back exactly once during its initialization.
package pending

import (
	"context"

	"github.com/gemaluna/storefront-client/domain"
)

// Key is the single well-known storage slot name. At most one pending cart
// exists at a time; a new interruption overwrites any prior one.
const Key = "pending_cart"

// Carrier bridges a cart across a redirect.
type Carrier interface {
	// Save serializes the lines to durable storage, unconditionally
	// overwriting any existing value.
	Save(ctx context.Context, lines []domain.CartLine) error

	// Take reads and deletes the stored value in one logical operation.
	// Returns nil lines (and nil error) when the slot is empty. The calling
	// page must invoke this exactly once per redirect-target visit so the
	// same pending cart is never reapplied twice.
	Take(ctx context.Context) ([]domain.CartLine, error)
}
