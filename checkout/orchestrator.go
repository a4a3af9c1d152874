// Package checkout drives the multi-step checkout sequence: validate cart,
// create the order, resolve missing preconditions (login, profile data),
// collect payment, finalize. Interrupts are resolved by redirect and never
// surface as user-visible errors.
package checkout

import (
	"context"
	"log/slog"
	"sync"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/mirror"
	"github.com/gemaluna/storefront-client/pending"
	"github.com/gemaluna/storefront-client/ui"
)

// API is the slice of the gateway the orchestrator and payment step need.
type API interface {
	CreateCheckout(ctx context.Context, request domain.CheckoutRequest) (*domain.CheckoutOutcome, error)
	PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	Pay(ctx context.Context, orderID string, input domain.PaymentInput) error
	EmptyCart(ctx context.Context) error
}

// Paths holds the redirect entry points around the checkout flow.
type Paths struct {
	Login             string
	ProfileCompletion string
	Catalog           string
}

// DefaultPaths returns the storefront's standard entry points.
func DefaultPaths() Paths {
	return Paths{
		Login:             "/login",
		ProfileCompletion: "/customer/complete-profile",
		Catalog:           "/catalog",
	}
}

// Orchestrator is a state machine over one checkout attempt:
// Idle -> Submitting -> {Success, NeedsLogin, NeedsProfileData, Failed}.
type Orchestrator struct {
	api     API
	cart    *mirror.CartMirror
	carrier pending.Carrier
	nav     ui.Navigator
	alerter ui.Alerter
	logger  *slog.Logger
	paths   Paths

	mu    sync.Mutex
	state string
}

// NewOrchestrator creates a checkout orchestrator bound to the given cart
// mirror. Submissions share the mirror's mutation gate, so a quantity change
// cannot race an in-flight checkout.
func NewOrchestrator(api API, cart *mirror.CartMirror, carrier pending.Carrier, nav ui.Navigator, alerter ui.Alerter, logger *slog.Logger, paths Paths) *Orchestrator {
	return &Orchestrator{
		api:     api,
		cart:    cart,
		carrier: carrier,
		nav:     nav,
		alerter: alerter,
		logger:  logger,
		paths:   paths,
		state:   domain.StateIdle,
	}
}

// State returns the current checkout state.
func (o *Orchestrator) State() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s string) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Submit runs one checkout attempt. On success it returns the payment step;
// on an interrupt (login or profile completion) it saves the pending cart,
// redirects, and returns nil with no error, because the redirect is the
// resolution. An empty cart fails immediately with no network call.
//
// Duplicate submissions are rejected by the shared gate: a duplicate submit
// could create two orders, so debouncing is a hard requirement here.
func (o *Orchestrator) Submit(ctx context.Context, request domain.CheckoutRequest) (*PaymentSession, error) {
	snapshot := o.cart.Snapshot()
	if snapshot.IsEmpty() {
		err := apperrors.EmptyCart()
		o.alerter.Alert(err.Message)
		return nil, err
	}

	if err := o.cart.Gate().Acquire(); err != nil {
		return nil, err
	}
	defer o.cart.Gate().Release()

	o.setState(domain.StateSubmitting)

	outcome, err := o.api.CreateCheckout(ctx, request)
	if err != nil {
		// Transport failure: no response means no redirect can have been
		// issued, so surfacing the generic retry message is always safe.
		o.setState(domain.StateFailed)
		o.alerter.Alert(apperrors.GenericRetryMessage)
		o.logger.ErrorContext(ctx, "checkout transport failure",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	switch outcome.Kind {
	case domain.OutcomeAuthRequired:
		o.interrupt(ctx, domain.StateNeedsLogin, o.paths.Login, snapshot)
		return nil, nil

	case domain.OutcomeProfileIncomplete:
		o.interrupt(ctx, domain.StateNeedsProfileData, o.paths.ProfileCompletion, snapshot)
		return nil, nil

	case domain.OutcomeSuccess:
		o.setState(domain.StateSuccess)
		o.logger.InfoContext(ctx, "checkout created",
			slog.String("order_id", outcome.Result.OrderID),
			slog.Int64("total", outcome.Result.Total),
		)
		return o.beginPayment(ctx, outcome.Result)

	default:
		o.setState(domain.StateFailed)
		o.alerter.Alert(outcome.Message)
		o.logger.WarnContext(ctx, "checkout rejected",
			slog.String("reason", outcome.Message),
		)
		return nil, apperrors.BusinessRejected(outcome.Message)
	}
}

// interrupt persists the pre-checkout snapshot and redirects. Terminal for
// the current page: no error is surfaced even if the save fails, because the
// redirect target can still proceed without the restored cart.
func (o *Orchestrator) interrupt(ctx context.Context, state, path string, snapshot *domain.CartSnapshot) {
	o.setState(state)

	if err := o.carrier.Save(ctx, snapshot.Lines); err != nil {
		o.logger.ErrorContext(ctx, "failed to save pending cart before redirect",
			slog.String("error", err.Error()),
		)
	}

	o.logger.InfoContext(ctx, "checkout interrupted",
		slog.String("state", state),
		slog.String("redirect", path),
		slog.Int("saved_lines", len(snapshot.Lines)),
	)
	o.nav.Redirect(path)
}

// beginPayment enters the payment step for a created order. A failure to
// load payment methods is a plain failure: the user is alerted and the
// control re-enabled so the attempt can be retried.
func (o *Orchestrator) beginPayment(ctx context.Context, result *domain.CheckoutResult) (*PaymentSession, error) {
	methods, err := o.api.PaymentMethods(ctx)
	if err != nil {
		o.setState(domain.StateFailed)
		o.alerter.Alert(apperrors.UserMessage(err))
		return nil, err
	}

	return &PaymentSession{
		api:     o.api,
		cart:    o.cart,
		nav:     o.nav,
		alerter: o.alerter,
		logger:  o.logger,
		catalog: o.paths.Catalog,
		Result:  result,
		Methods: methods,
	}, nil
}
