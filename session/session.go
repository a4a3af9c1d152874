// Package session wires the cart mirror, checkout orchestrator, and
// pending-cart carrier into one page-scoped coordinator. Nothing here is a
// process-wide singleton: each page or kiosk shell owns its own Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/checkout"
	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/gateway"
	"github.com/gemaluna/storefront-client/mirror"
	"github.com/gemaluna/storefront-client/pending"
	"github.com/gemaluna/storefront-client/pkg/httpclient"
	"github.com/gemaluna/storefront-client/pkg/logger"
	"github.com/gemaluna/storefront-client/ui"
)

// Ports are the UI seams a host surface supplies. Nil fields default to
// no-op implementations (headless use).
type Ports struct {
	Alerter   ui.Alerter
	Confirmer ui.Confirmer
	Navigator ui.Navigator
	Badge     ui.BadgeSink
}

func (p Ports) withDefaults() Ports {
	noop := ui.Noop{}
	if p.Alerter == nil {
		p.Alerter = noop
	}
	if p.Confirmer == nil {
		p.Confirmer = noop
	}
	if p.Navigator == nil {
		p.Navigator = noop
	}
	if p.Badge == nil {
		p.Badge = noop
	}
	return p
}

// Session owns one user's cart/checkout coordination against the storefront
// backend.
type Session struct {
	cfg     *Config
	logger  *slog.Logger
	gateway *gateway.Gateway
	cart    *mirror.CartMirror
	orch    *checkout.Orchestrator
	carrier pending.Carrier
	rdb     *redis.Client

	payment *checkout.PaymentSession
}

// New creates a session, wiring the HTTP client, gateway, carrier, mirror,
// and orchestrator from the given configuration.
func New(cfg *Config, ports Ports) (*Session, error) {
	log := logger.New("storefront-session", cfg.LogLevel)
	ports = ports.withDefaults()

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	client := httpclient.New(httpCfg)

	var doer gateway.HTTPDoer = client
	if cfg.BreakerEnabled {
		doer = httpclient.NewCircuitBreakerClient(
			client,
			httpclient.DefaultCircuitBreakerConfig("storefront-api"),
			log,
		)
	}

	gw := gateway.New(cfg.BaseURL, doer, log)

	var (
		carrier pending.Carrier
		rdb     *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}

		sessionID := cfg.SessionID
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		carrier = pending.NewRedisStore(rdb, sessionID)
		log.Info("pending cart store: redis",
			slog.String("addr", cfg.RedisAddr),
			slog.String("session_id", sessionID),
		)
	} else {
		carrier = pending.NewFileStore(cfg.PendingDir)
		log.Info("pending cart store: file",
			slog.String("dir", cfg.PendingDir),
		)
	}

	gate := &mirror.Gate{}
	cart := mirror.New(gw, gate, log, ports.Alerter, ports.Confirmer, ports.Badge)

	paths := checkout.Paths{
		Login:             cfg.LoginPath,
		ProfileCompletion: cfg.ProfilePath,
		Catalog:           cfg.CatalogPath,
	}
	orch := checkout.NewOrchestrator(gw, cart, carrier, ports.Navigator, ports.Alerter, log, paths)

	return &Session{
		cfg:     cfg,
		logger:  log,
		gateway: gw,
		cart:    cart,
		orch:    orch,
		carrier: carrier,
		rdb:     rdb,
	}, nil
}

// Close releases session resources.
func (s *Session) Close() error {
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

// Cart returns the underlying cart mirror.
func (s *Session) Cart() *mirror.CartMirror {
	return s.cart
}

// CheckoutState returns the orchestrator's current state.
func (s *Session) CheckoutState() string {
	return s.orch.State()
}

// Refresh re-fetches the cart snapshot.
func (s *Session) Refresh(ctx context.Context) error {
	return s.cart.Refresh(s.opCtx(ctx, "refresh"))
}

// SetQuantity sets a line's quantity (non-positive values are clamped to 1).
func (s *Session) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return s.cart.SetQuantity(s.opCtx(ctx, "set_quantity"), productID, quantity)
}

// Increment raises a line's quantity by one.
func (s *Session) Increment(ctx context.Context, productID string) error {
	return s.cart.Increment(s.opCtx(ctx, "increment"), productID)
}

// Decrement lowers a line's quantity by one, flooring at 1.
func (s *Session) Decrement(ctx context.Context, productID string) error {
	return s.cart.Decrement(s.opCtx(ctx, "decrement"), productID)
}

// Remove deletes a line after user confirmation.
func (s *Session) Remove(ctx context.Context, productID string) error {
	return s.cart.Remove(s.opCtx(ctx, "remove"), productID)
}

// Add puts a product in the cart.
func (s *Session) Add(ctx context.Context, productID string, quantity int) error {
	return s.cart.Add(s.opCtx(ctx, "add"), productID, quantity)
}

// SubmitCheckout runs one checkout attempt. On success the returned payment
// session is also retained, so SubmitPayment can be called on the Session
// directly.
func (s *Session) SubmitCheckout(ctx context.Context, request domain.CheckoutRequest) (*checkout.PaymentSession, error) {
	payment, err := s.orch.Submit(s.opCtx(ctx, "checkout"), request)
	if err != nil {
		return nil, err
	}
	s.payment = payment
	return payment, nil
}

// SubmitPayment pays the order created by the last successful SubmitCheckout.
func (s *Session) SubmitPayment(ctx context.Context, input domain.PaymentInput) error {
	if s.payment == nil {
		return apperrors.InvalidInput("no checkout in progress")
	}

	err := s.payment.SubmitPayment(s.opCtx(ctx, "payment"), input)
	if err != nil {
		return err
	}
	s.payment = nil
	return nil
}

// RestorePending reapplies a pending cart saved before a login or
// profile-completion redirect, then refreshes. Safe to call on every page
// initialization: the carrier's take-once semantics make repeat calls no-ops.
func (s *Session) RestorePending(ctx context.Context) error {
	ctx = s.opCtx(ctx, "restore_pending")

	lines, err := s.carrier.Take(ctx)
	if err != nil {
		return apperrors.Wrap(err, "take pending cart")
	}
	if len(lines) == 0 {
		return nil
	}

	var errs []error
	for _, line := range lines {
		if _, err := s.gateway.AddLine(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger.WarnContext(ctx, "failed to restore pending cart line",
				slog.String("product_id", line.ProductID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}

	if err := s.cart.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}

	s.logger.InfoContext(ctx, "pending cart restored",
		slog.Int("lines", len(lines)),
		slog.Int("failures", len(errs)),
	)
	return errors.Join(errs...)
}

// opCtx tags the context with a fresh correlation ID and the operation name,
// and stores an enriched logger for downstream use.
func (s *Session) opCtx(ctx context.Context, op string) context.Context {
	ctx = logger.WithCorrelationID(ctx, uuid.New().String())
	ctx = logger.WithOperation(ctx, op)
	return logger.NewContext(ctx, logger.WithContext(ctx, s.logger))
}
