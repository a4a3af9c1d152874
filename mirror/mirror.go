// Package mirror keeps an eventually-consistent local view of the
// server-owned cart. Every mutation is round-tripped through the server and
// followed by a fresh fetch; the mirror never adjusts prices or totals
// locally, because discount, tax, and stock rules are server-owned.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/gateway"
	"github.com/gemaluna/storefront-client/ui"
)

// CartAPI is the slice of the gateway the mirror needs.
type CartAPI interface {
	GetCart(ctx context.Context) (*domain.CartSnapshot, error)
	AddLine(ctx context.Context, productID string, quantity int) (*gateway.MutationAck, error)
	UpdateLine(ctx context.Context, productID string, quantity int) (*gateway.MutationAck, error)
	RemoveLine(ctx context.Context, productID string) (*gateway.MutationAck, error)
}

// CartMirror presents the local view of the remote cart and serializes all
// mutating operations against it.
type CartMirror struct {
	api     CartAPI
	gate    *Gate
	logger  *slog.Logger
	alerter ui.Alerter
	confirm ui.Confirmer
	badge   ui.BadgeSink

	mu         sync.RWMutex
	snapshot   *domain.CartSnapshot
	badgeCount int
}

// New creates a cart mirror. The gate is shared with the checkout
// orchestrator so cart mutations and checkout submission exclude each other.
func New(api CartAPI, gate *Gate, logger *slog.Logger, alerter ui.Alerter, confirm ui.Confirmer, badge ui.BadgeSink) *CartMirror {
	return &CartMirror{
		api:     api,
		gate:    gate,
		logger:  logger,
		alerter: alerter,
		confirm: confirm,
		badge:   badge,
	}
}

// Gate returns the shared mutation gate.
func (m *CartMirror) Gate() *Gate {
	return m.gate
}

// Snapshot returns a copy of the current local view. Nil until the first
// successful refresh.
func (m *CartMirror) Snapshot() *domain.CartSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot.Clone()
}

// BadgeCount returns the item count from the most recent successful mutation
// or refresh. It is never computed by summing local lines speculatively,
// which would drift from server-side stock caps.
func (m *CartMirror) BadgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.badgeCount
}

// Refresh fetches the current snapshot and replaces local state
// unconditionally. On transport failure the prior state is left untouched and
// a sync error is returned: the cart panel keeps showing a stale-but-present
// view rather than blanking.
func (m *CartMirror) Refresh(ctx context.Context) error {
	snapshot, err := m.api.GetCart(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "cart refresh failed, keeping stale view",
			slog.String("error", err.Error()),
		)
		return apperrors.Wrap(err, "sync cart")
	}

	m.replace(snapshot)
	return nil
}

// SetQuantity sets the quantity of a cart line. Non-positive quantities are
// clamped to 1 before transmission. On server rejection the user is alerted
// with the server-supplied reason and the mirror still refreshes to
// resynchronize.
func (m *CartMirror) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if err := m.gate.Acquire(); err != nil {
		return err
	}
	defer m.gate.Release()

	return m.setQuantity(ctx, productID, quantity)
}

// Increment raises the displayed quantity by one. No upper bound is enforced
// client-side; the server is the sole authority and rejects past stock.
func (m *CartMirror) Increment(ctx context.Context, productID string) error {
	if err := m.gate.Acquire(); err != nil {
		return err
	}
	defer m.gate.Release()

	line, err := m.displayedLine(productID)
	if err != nil {
		return err
	}
	return m.setQuantity(ctx, productID, line.Quantity+1)
}

// Decrement lowers the displayed quantity by one, flooring at 1. Removing the
// last unit is Remove's job, behind a confirmation.
func (m *CartMirror) Decrement(ctx context.Context, productID string) error {
	if err := m.gate.Acquire(); err != nil {
		return err
	}
	defer m.gate.Release()

	line, err := m.displayedLine(productID)
	if err != nil {
		return err
	}
	next := line.Quantity - 1
	if next < 1 {
		next = 1
	}
	return m.setQuantity(ctx, productID, next)
}

// Remove deletes a product from the cart after user confirmation.
func (m *CartMirror) Remove(ctx context.Context, productID string) error {
	if !m.confirm.Confirm("Are you sure you want to remove this product from the cart?") {
		return nil
	}

	if err := m.gate.Acquire(); err != nil {
		return err
	}
	defer m.gate.Release()

	ack, err := m.api.RemoveLine(ctx, productID)
	if err != nil {
		m.alerter.Alert(apperrors.UserMessage(err))
		return err
	}

	if ack.TotalItemCount != nil {
		m.setBadge(*ack.TotalItemCount)
	}
	m.refreshAfterMutation(ctx, "remove")

	m.logger.InfoContext(ctx, "cart line removed",
		slog.String("product_id", productID),
	)
	return nil
}

// Add puts quantity units of a product in the cart. Quantities below 1
// default to 1. On success the badge comes from the server-returned item
// count; on failure the server error message is surfaced verbatim.
func (m *CartMirror) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	if err := m.gate.Acquire(); err != nil {
		return err
	}
	defer m.gate.Release()

	ack, err := m.api.AddLine(ctx, productID, quantity)
	if err != nil {
		m.alerter.Alert(apperrors.UserMessage(err))
		return err
	}

	if ack.TotalItemCount != nil {
		m.setBadge(*ack.TotalItemCount)
	}
	m.refreshAfterMutation(ctx, "add")

	m.logger.InfoContext(ctx, "cart line added",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return nil
}

// ZeroBadge clears the badge after the cart has been emptied server-side.
func (m *CartMirror) ZeroBadge() {
	m.mu.Lock()
	m.snapshot = &domain.CartSnapshot{Lines: []domain.CartLine{}}
	m.badgeCount = 0
	m.mu.Unlock()

	m.badge.SetBadge(0)
}

// setQuantity is the shared update path. Callers hold the gate.
func (m *CartMirror) setQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	_, err := m.api.UpdateLine(ctx, productID, quantity)
	if err != nil {
		m.alerter.Alert(apperrors.UserMessage(err))
		// Refresh regardless: the panel must show the server's state, not
		// the rejected value.
		m.refreshAfterMutation(ctx, "set_quantity")
		return err
	}

	m.refreshAfterMutation(ctx, "set_quantity")

	m.logger.InfoContext(ctx, "cart quantity updated",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return nil
}

// displayedLine reads the currently displayed quantity for a product.
func (m *CartMirror) displayedLine(productID string) (*domain.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	line := m.snapshot.FindLine(productID)
	if line == nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %s is not in the cart", productID))
	}
	cp := *line
	return &cp, nil
}

// refreshAfterMutation re-fetches the cart after a mutation attempt. A failed
// re-fetch is logged but not surfaced: the mutation itself already resolved.
func (m *CartMirror) refreshAfterMutation(ctx context.Context, op string) {
	snapshot, err := m.api.GetCart(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "post-mutation cart refresh failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return
	}
	m.replace(snapshot)
}

func (m *CartMirror) replace(snapshot *domain.CartSnapshot) {
	m.mu.Lock()
	m.snapshot = snapshot
	m.badgeCount = snapshot.TotalItemCount
	m.mu.Unlock()

	m.badge.SetBadge(snapshot.TotalItemCount)
}

func (m *CartMirror) setBadge(count int) {
	m.mu.Lock()
	m.badgeCount = count
	m.mu.Unlock()

	m.badge.SetBadge(count)
}
