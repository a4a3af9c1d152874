package checkout

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/mirror"
	"github.com/gemaluna/storefront-client/pkg/validator"
	"github.com/gemaluna/storefront-client/ui"
)

// PaymentSession is the payment step entered only after a successful checkout
// creation. It carries the server's result (total due, optional pre-discount
// subtotal and discount percentage, both server-supplied) and the available
// payment methods.
type PaymentSession struct {
	api     API
	cart    *mirror.CartMirror
	nav     ui.Navigator
	alerter ui.Alerter
	logger  *slog.Logger
	catalog string

	// Result is the successful checkout creation response.
	Result *domain.CheckoutResult

	// Methods is the server's ordered list of payment methods.
	Methods []domain.PaymentMethod

	paid bool
}

// TotalDue returns the amount due in cents.
func (p *PaymentSession) TotalDue() int64 {
	return p.Result.Total
}

// DiscountBadge returns the display inputs for the classification discount:
// the struck-through pre-discount subtotal and the percentage. ok is false
// when no discount applies. Both values come from the server; the client
// never computes the discount.
func (p *PaymentSession) DiscountBadge() (subtotal int64, pct int, ok bool) {
	if !p.Result.HasDiscount() {
		return 0, 0, false
	}
	return p.Result.SubtotalBeforeDiscount, p.Result.DiscountPct, true
}

// Paid reports whether the payment has been completed.
func (p *PaymentSession) Paid() bool {
	return p.paid
}

// SubmitPayment validates the input locally, posts the payment, and on
// success empties the server-side cart, zeroes the badge, and navigates to
// the catalog landing page. On failure the server message is surfaced and the
// caller may retry.
//
// The amount bound (amount <= total due) is an input constraint, not a
// recomputation: the total is server-owned.
func (p *PaymentSession) SubmitPayment(ctx context.Context, input domain.PaymentInput) error {
	if p.paid {
		return apperrors.InvalidInput("payment has already been registered for this order")
	}

	if err := validator.Validate(input); err != nil {
		msg := fmt.Sprintf("invalid payment: %s", err.Error())
		p.alerter.Alert(msg)
		return apperrors.InvalidInput(msg)
	}
	if input.Amount > p.Result.Total {
		err := apperrors.InvalidInput("payment amount exceeds the total due")
		p.alerter.Alert(err.Message)
		return err
	}

	if err := p.api.Pay(ctx, p.Result.OrderID, input); err != nil {
		p.alerter.Alert(apperrors.UserMessage(err))
		p.logger.WarnContext(ctx, "payment rejected",
			slog.String("order_id", p.Result.OrderID),
			slog.String("error", err.Error()),
		)
		return err
	}

	p.paid = true

	// The order is paid; a failure to clear the cart must not undo that.
	// The next refresh resynchronizes the panel either way.
	if err := p.api.EmptyCart(ctx); err != nil {
		p.logger.ErrorContext(ctx, "failed to empty cart after payment",
			slog.String("order_id", p.Result.OrderID),
			slog.String("error", err.Error()),
		)
	}
	p.cart.ZeroBadge()

	p.logger.InfoContext(ctx, "payment registered",
		slog.String("order_id", p.Result.OrderID),
		slog.Int64("amount", input.Amount),
		slog.String("method_id", input.MethodID),
	)

	p.alerter.Alert("Thank you for your purchase!")
	p.nav.Redirect(p.catalog)
	return nil
}
