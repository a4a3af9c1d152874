package checkout_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/checkout"
	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/gateway"
	"github.com/gemaluna/storefront-client/mirror"
	"github.com/gemaluna/storefront-client/pending"
	"github.com/gemaluna/storefront-client/pkg/httpclient"
	"github.com/gemaluna/storefront-client/pkg/logger"
	"github.com/gemaluna/storefront-client/storetest"
	"github.com/gemaluna/storefront-client/ui/uitest"
)

type fixture struct {
	orchestrator *checkout.Orchestrator
	cart         *mirror.CartMirror
	carrier      pending.Carrier
	server       *storetest.Server
	ports        *uitest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := storetest.New(t)

	client := httpclient.New(httpclient.Config{
		Timeout:         5 * time.Second,
		MaxConnsPerHost: 10,
	})
	log := logger.NewWithWriter("test", "error", io.Discard)
	gw := gateway.New(server.URL, client, log)

	ports := uitest.New()
	cart := mirror.New(gw, &mirror.Gate{}, log, ports, ports, ports)
	carrier := pending.NewFileStore(t.TempDir())
	orch := checkout.NewOrchestrator(gw, cart, carrier, ports, ports, log, checkout.DefaultPaths())

	return &fixture{
		orchestrator: orch,
		cart:         cart,
		carrier:      carrier,
		server:       server,
		ports:        ports,
	}
}

func (f *fixture) seedAndRefresh(t *testing.T, lines ...domain.CartLine) {
	t.Helper()
	f.server.SeedCart(lines...)
	require.NoError(t, f.cart.Refresh(context.Background()))
}

func TestSubmit_EmptyCartNeverReachesServer(t *testing.T) {
	f := newFixture(t)

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})
	require.Error(t, err)

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, apperrors.ErrEmptyCart))
	assert.Equal(t, 0, f.server.Hits("/api/cart/checkout"))
	require.Len(t, f.ports.Alerts(), 1)
	assert.Equal(t, "your cart is empty", f.ports.Alerts()[0])
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, domain.StateSuccess, f.orchestrator.State())
	assert.Equal(t, "55", session.Result.OrderID)
	assert.Equal(t, int64(20000), session.TotalDue())
	require.Len(t, session.Methods, 3)
	assert.Empty(t, f.ports.Alerts())
	assert.Empty(t, f.ports.Redirects())
}

func TestSubmit_LoginInterrupt(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})
	f.server.RequireLogin = true

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})

	// An interrupt is a resolution, not an error.
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, domain.StateNeedsLogin, f.orchestrator.State())
	assert.Equal(t, []string{"/login"}, f.ports.Redirects())
	assert.Empty(t, f.ports.Alerts())

	// The cart was parked for the return trip.
	saved, takeErr := f.carrier.Take(context.Background())
	require.NoError(t, takeErr)
	require.Len(t, saved, 1)
	assert.Equal(t, "7", saved[0].ProductID)
}

func TestSubmit_ProfileInterrupt(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})
	f.server.RequireProfile = true

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})

	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, domain.StateNeedsProfileData, f.orchestrator.State())
	assert.Equal(t, []string{"/customer/complete-profile"}, f.ports.Redirects())
	assert.Empty(t, f.ports.Alerts())
}

func TestSubmit_SentinelBodyInterrupt(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})
	f.server.SentinelBody = "<html>checkout halted: MISSING_TAX_ID on file</html>"

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})

	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, domain.StateNeedsProfileData, f.orchestrator.State())
	assert.Equal(t, []string{"/customer/complete-profile"}, f.ports.Redirects())
}

func TestSubmit_BusinessFailure(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})
	f.server.CheckoutFailMessage = "order minimum not reached"

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})
	require.Error(t, err)

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRejected))
	assert.Equal(t, domain.StateFailed, f.orchestrator.State())
	require.Len(t, f.ports.Alerts(), 1)
	assert.Equal(t, "order minimum not reached", f.ports.Alerts()[0])
	assert.Empty(t, f.ports.Redirects())
}

func TestSubmit_TransportFailure(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})
	f.server.Close()

	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})
	require.Error(t, err)

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.Equal(t, domain.StateFailed, f.orchestrator.State())
	require.Len(t, f.ports.Alerts(), 1)
	assert.Equal(t, apperrors.GenericRetryMessage, f.ports.Alerts()[0])
}

func TestSubmit_DebouncedWhileGateHeld(t *testing.T) {
	f := newFixture(t)
	f.seedAndRefresh(t, domain.CartLine{ProductID: "7", UnitPrice: 10000, Quantity: 2})

	gate := f.cart.Gate()
	require.NoError(t, gate.Acquire())
	defer gate.Release()

	before := f.server.Hits("/api/cart/checkout")
	session, err := f.orchestrator.Submit(context.Background(), domain.CheckoutRequest{})
	require.Error(t, err)

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, apperrors.ErrBusy))
	assert.Equal(t, before, f.server.Hits("/api/cart/checkout"))
}
