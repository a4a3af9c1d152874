package mirror

import (
	"sync"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"
)

// Gate serializes mutating cart operations. The triggering control is
// re-enabled only after the in-flight operation completes, but nothing stops
// a user from triggering two different controls at once; the gate closes that
// race by failing the second operation fast instead of letting it interleave.
//
// One gate is shared between the cart mirror and the checkout orchestrator so
// a quantity change cannot race an in-flight checkout submission.
type Gate struct {
	mu sync.Mutex
}

// Acquire claims the gate, returning ErrBusy if another operation holds it.
func (g *Gate) Acquire() error {
	if !g.mu.TryLock() {
		return apperrors.Busy()
	}
	return nil
}

// Release frees the gate for the next operation.
func (g *Gate) Release() {
	g.mu.Unlock()
}
