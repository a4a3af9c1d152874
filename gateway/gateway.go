// Package gateway is the typed REST boundary to the storefront backend. All
// response-shape ambiguity (structured flags vs. sentinel text) is decoded
// here, behind one seam, so the rest of the client only ever sees tagged
// outcomes and the shared error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/domain"
	"github.com/gemaluna/storefront-client/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Gateway is a thin typed client over the storefront REST API.
type Gateway struct {
	baseURL    string
	httpClient HTTPDoer
	logger     *slog.Logger
}

// New creates a gateway for the backend at baseURL.
func New(baseURL string, httpClient HTTPDoer, logger *slog.Logger) *Gateway {
	return &Gateway{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// MutationAck is the envelope returned by cart mutation endpoints. Not every
// endpoint reports the item count, so it is optional.
type MutationAck struct {
	Success        bool   `json:"success"`
	TotalItemCount *int   `json:"total_item_count,omitempty"`
	Error          string `json:"error,omitempty"`
}

// GetCart fetches the current cart snapshot.
func (g *Gateway) GetCart(ctx context.Context) (*domain.CartSnapshot, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/cart", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create cart request: %w", err)
	}

	resp, err := g.httpClient.Do(ctx, req)
	if err != nil {
		observeRequest("get_cart", outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("fetch cart: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observeRequest("get_cart", outcomeRejected, start)
		return nil, httpclient.ParseResponseError(resp)
	}

	var snapshot domain.CartSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		observeRequest("get_cart", outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("decode cart response: %w", err))
	}

	observeRequest("get_cart", outcomeOK, start)
	return &snapshot, nil
}

// AddLine adds quantity units of a product to the cart.
func (g *Gateway) AddLine(ctx context.Context, productID string, quantity int) (*MutationAck, error) {
	return g.mutate(ctx, "add_line", "/api/cart/add", cartMutationBody{
		ProductID: productID,
		Quantity:  quantity,
	})
}

// UpdateLine sets the quantity of an existing cart line.
func (g *Gateway) UpdateLine(ctx context.Context, productID string, quantity int) (*MutationAck, error) {
	return g.mutate(ctx, "update_line", "/api/cart/update", cartMutationBody{
		ProductID: productID,
		Quantity:  quantity,
	})
}

// RemoveLine removes a product from the cart entirely.
func (g *Gateway) RemoveLine(ctx context.Context, productID string) (*MutationAck, error) {
	return g.mutate(ctx, "remove_line", "/api/cart/remove", cartMutationBody{
		ProductID: productID,
	})
}

// EmptyCart clears the server-side cart after a completed payment.
func (g *Gateway) EmptyCart(ctx context.Context) error {
	start := time.Now()
	resp, err := g.post(ctx, "/api/cart/empty", nil)
	if err != nil {
		observeRequest("empty_cart", outcomeTransport, start)
		return apperrors.Transport(fmt.Errorf("empty cart: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		observeRequest("empty_cart", outcomeRejected, start)
		return httpclient.ParseResponseError(resp)
	}

	observeRequest("empty_cart", outcomeOK, start)
	return nil
}

// CreateCheckout submits the checkout creation call and decodes the response
// into a tagged outcome. A transport-level failure is returned as an error;
// every HTTP response, success or not, becomes an outcome.
func (g *Gateway) CreateCheckout(ctx context.Context, request domain.CheckoutRequest) (*domain.CheckoutOutcome, error) {
	start := time.Now()
	resp, err := g.post(ctx, "/api/cart/checkout", request)
	if err != nil {
		observeRequest("checkout", outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("create checkout: %w", err))
	}
	defer resp.Body.Close()

	outcome, err := DecodeCheckoutResponse(resp)
	if err != nil {
		observeRequest("checkout", outcomeTransport, start)
		return nil, err
	}

	observeRequest("checkout", "outcome_"+outcome.Kind.String(), start)
	g.logger.InfoContext(ctx, "checkout response decoded",
		slog.String("outcome", outcome.Kind.String()),
		slog.Int("status", resp.StatusCode),
	)
	return outcome, nil
}

// PaymentMethods fetches the ordered list of available payment methods.
func (g *Gateway) PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/payments/methods", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create payment methods request: %w", err)
	}

	resp, err := g.httpClient.Do(ctx, req)
	if err != nil {
		observeRequest("payment_methods", outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("fetch payment methods: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observeRequest("payment_methods", outcomeRejected, start)
		return nil, httpclient.ParseResponseError(resp)
	}

	var methods []domain.PaymentMethod
	if err := json.NewDecoder(resp.Body).Decode(&methods); err != nil {
		observeRequest("payment_methods", outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("decode payment methods: %w", err))
	}

	observeRequest("payment_methods", outcomeOK, start)
	return methods, nil
}

// Pay submits a payment for the given order.
func (g *Gateway) Pay(ctx context.Context, orderID string, input domain.PaymentInput) error {
	start := time.Now()
	path := "/api/orders/" + url.PathEscape(orderID) + "/pay"
	resp, err := g.post(ctx, path, input)
	if err != nil {
		observeRequest("pay", outcomeTransport, start)
		return apperrors.Transport(fmt.Errorf("submit payment: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observeRequest("pay", outcomeRejected, start)
		return httpclient.ParseResponseError(resp)
	}

	var ack struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		observeRequest("pay", outcomeTransport, start)
		return apperrors.Transport(fmt.Errorf("decode payment response: %w", err))
	}
	if !ack.Success {
		observeRequest("pay", outcomeRejected, start)
		return apperrors.BusinessRejected(ack.Message)
	}

	observeRequest("pay", outcomeOK, start)
	return nil
}

type cartMutationBody struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"`
}

// mutate posts a cart mutation and decodes the shared ack envelope. A
// success=false envelope becomes a business rejection carrying the server's
// reason verbatim.
func (g *Gateway) mutate(ctx context.Context, op, path string, body cartMutationBody) (*MutationAck, error) {
	start := time.Now()
	resp, err := g.post(ctx, path, body)
	if err != nil {
		observeRequest(op, outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observeRequest(op, outcomeRejected, start)
		return nil, httpclient.ParseResponseError(resp)
	}

	var ack MutationAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		observeRequest(op, outcomeTransport, start)
		return nil, apperrors.Transport(fmt.Errorf("decode %s response: %w", op, err))
	}
	if !ack.Success {
		observeRequest(op, outcomeRejected, start)
		return nil, apperrors.BusinessRejected(ack.Error)
	}

	observeRequest(op, outcomeOK, start)
	return &ack, nil
}

func (g *Gateway) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, &payload)
	if err != nil {
		return nil, fmt.Errorf("create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.httpClient.Do(ctx, req)
}
