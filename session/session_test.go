package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/session"
	"github.com/gemaluna/storefront-client/storetest"
	"github.com/gemaluna/storefront-client/ui/uitest"
)

func newSession(t *testing.T, mutate func(cfg *session.Config)) (*session.Session, *storetest.Server, *uitest.Recorder) {
	t.Helper()
	server := storetest.New(t)

	cfg := &session.Config{
		BaseURL:     server.URL,
		LogLevel:    "error",
		HTTPTimeout: 5 * time.Second,
		LoginPath:   "/login",
		ProfilePath: "/customer/complete-profile",
		CatalogPath: "/catalog",
		PendingDir:  t.TempDir(),
	}
	if mutate != nil {
		mutate(cfg)
	}

	ports := uitest.New()
	s, err := session.New(cfg, session.Ports{
		Alerter:   ports,
		Confirmer: ports,
		Navigator: ports,
		Badge:     ports,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, server, ports
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "https://shop.example.com")
	t.Setenv("STORE_HTTP_TIMEOUT", "30s")
	t.Setenv("STORE_BREAKER_ENABLED", "false")

	cfg, err := session.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.BreakerEnabled)
	// Defaults fill in what the environment leaves unset.
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, "/customer/complete-profile", cfg.ProfilePath)
	assert.Equal(t, "/catalog", cfg.CatalogPath)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *session.Config)
		wantErr bool
	}{
		{name: "valid", mutate: nil},
		{name: "missing scheme", mutate: func(cfg *session.Config) { cfg.BaseURL = "localhost:8080" }, wantErr: true},
		{name: "empty base URL", mutate: func(cfg *session.Config) { cfg.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(cfg *session.Config) { cfg.HTTPTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &session.Config{
				BaseURL:     "http://localhost:8080",
				HTTPTimeout: 15 * time.Second,
			}
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_CartFlow(t *testing.T) {
	s, server, ports := newSession(t, nil)
	ctx := context.Background()

	server.SeedProduct("7", storetest.Product{Name: "Gold Ring", SKU: "GR-7", Price: 10000, Stock: 10})

	require.NoError(t, s.Add(ctx, "7", 2))
	assert.Equal(t, 2, s.Cart().BadgeCount())

	require.NoError(t, s.Increment(ctx, "7"))
	assert.Equal(t, 3, server.CartLines()[0].Quantity)

	require.NoError(t, s.SetQuantity(ctx, "7", 5))
	assert.Equal(t, 5, server.CartLines()[0].Quantity)

	ports.ConfirmAnswer = true
	require.NoError(t, s.Remove(ctx, "7"))
	assert.Empty(t, server.CartLines())
	assert.Equal(t, 0, ports.LastBadge())
}

func TestSession_CheckoutAndPayment(t *testing.T) {
	s, server, ports := newSession(t, nil)
	ctx := context.Background()

	server.SeedProduct("7", storetest.Product{Name: "Gold Ring", Price: 10000, Stock: 10})
	require.NoError(t, s.Add(ctx, "7", 2))

	payment, err := s.SubmitCheckout(ctx, domain.CheckoutRequest{})
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.StateSuccess, s.CheckoutState())

	require.NoError(t, s.SubmitPayment(ctx, domain.PaymentInput{
		Amount:   payment.TotalDue(),
		MethodID: "1",
	}))

	assert.Equal(t, int64(20000), server.PaidOrders["55"])
	assert.Empty(t, server.CartLines())
	assert.Equal(t, []string{"/catalog"}, ports.Redirects())
}

func TestSession_PaymentWithoutCheckout(t *testing.T) {
	s, _, _ := newSession(t, nil)

	err := s.SubmitPayment(context.Background(), domain.PaymentInput{Amount: 100, MethodID: "1"})
	require.Error(t, err)
}

func TestSession_RestorePending(t *testing.T) {
	s, server, _ := newSession(t, nil)
	ctx := context.Background()

	server.SeedProduct("7", storetest.Product{Name: "Gold Ring", Price: 10000, Stock: 10})
	require.NoError(t, s.Add(ctx, "7", 2))

	// A login interrupt parks the cart and redirects.
	server.RequireLogin = true
	payment, err := s.SubmitCheckout(ctx, domain.CheckoutRequest{})
	require.NoError(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, domain.StateNeedsLogin, s.CheckoutState())

	// Back from login: the server-side session lost the cart.
	server.RequireLogin = false
	server.SeedCart()

	require.NoError(t, s.RestorePending(ctx))
	require.Len(t, server.CartLines(), 1)
	assert.Equal(t, 2, server.CartLines()[0].Quantity)

	// The slot was consumed; restoring again changes nothing.
	require.NoError(t, s.RestorePending(ctx))
	assert.Equal(t, 2, server.CartLines()[0].Quantity)
}

func TestSession_RedisCarrier(t *testing.T) {
	mr := miniredis.RunT(t)

	s, server, _ := newSession(t, func(cfg *session.Config) {
		cfg.RedisAddr = mr.Addr()
		cfg.SessionID = "kiosk-1"
	})
	ctx := context.Background()

	server.SeedProduct("7", storetest.Product{Name: "Gold Ring", Price: 10000, Stock: 10})
	require.NoError(t, s.Add(ctx, "7", 2))

	server.RequireLogin = true
	_, err := s.SubmitCheckout(ctx, domain.CheckoutRequest{})
	require.NoError(t, err)

	// The pending cart landed in the per-session Redis slot.
	got, err := mr.Get("storefront:pending_cart:kiosk-1")
	require.NoError(t, err)
	assert.Contains(t, got, `"product_id":"7"`)
}

func TestSession_RedisUnreachable(t *testing.T) {
	server := storetest.New(t)

	cfg := &session.Config{
		BaseURL:     server.URL,
		LogLevel:    "error",
		HTTPTimeout: 5 * time.Second,
		PendingDir:  t.TempDir(),
		RedisAddr:   "127.0.0.1:1",
	}

	_, err := session.New(cfg, session.Ports{})
	require.Error(t, err)
}
