package gateway

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaluna/storefront-client/domain"
)

func checkoutResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDecodeCheckoutResponse_Success(t *testing.T) {
	resp := checkoutResponse(http.StatusOK,
		`{"success":true,"order_id":"55","invoice_id":"F-100","total":20000}`)

	outcome, err := DecodeCheckoutResponse(resp)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, "55", outcome.Result.OrderID)
	assert.Equal(t, "F-100", outcome.Result.InvoiceID)
	assert.Equal(t, int64(20000), outcome.Result.Total)
	assert.False(t, outcome.Result.HasDiscount())
}

func TestDecodeCheckoutResponse_NumericIDsTolerated(t *testing.T) {
	// Some backend handlers emit IDs as JSON numbers rather than strings.
	resp := checkoutResponse(http.StatusOK,
		`{"success":true,"order_id":55,"total":20000}`)

	outcome, err := DecodeCheckoutResponse(resp)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "55", outcome.Result.OrderID)
	assert.Empty(t, outcome.Result.InvoiceID)
}

func TestDecodeCheckoutResponse_Discount(t *testing.T) {
	resp := checkoutResponse(http.StatusOK,
		`{"success":true,"order_id":"60","total":18000,"classification_discount_pct":10,"subtotal_before_discount":20000}`)

	outcome, err := DecodeCheckoutResponse(resp)
	require.NoError(t, err)

	require.True(t, outcome.Result.HasDiscount())
	assert.Equal(t, 10, outcome.Result.DiscountPct)
	assert.Equal(t, int64(20000), outcome.Result.SubtotalBeforeDiscount)
}

func TestDecodeCheckoutResponse_Unauthorized(t *testing.T) {
	// 401 is the login interrupt regardless of body shape.
	for _, body := range []string{`{"require_login":true}`, "<html>Unauthorized</html>", ""} {
		outcome, err := DecodeCheckoutResponse(checkoutResponse(http.StatusUnauthorized, body))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeAuthRequired, outcome.Kind, "body: %q", body)
	}
}

func TestDecodeCheckoutResponse_StructuredInterrupts(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.OutcomeKind
	}{
		{"require_login flag", http.StatusBadRequest, `{"require_login":true}`, domain.OutcomeAuthRequired},
		{"no-customer error code", http.StatusBadRequest, `{"error":"NO_CUSTOMER"}`, domain.OutcomeAuthRequired},
		{"require_complete_data flag", http.StatusBadRequest, `{"require_complete_data":true}`, domain.OutcomeProfileIncomplete},
		{"missing tax id code", http.StatusBadRequest, `{"error":"MISSING_TAX_ID"}`, domain.OutcomeProfileIncomplete},
		{"missing address code", http.StatusBadRequest, `{"error":"MISSING_ADDRESS"}`, domain.OutcomeProfileIncomplete},
		{"missing phone code", http.StatusBadRequest, `{"error":"MISSING_PHONE"}`, domain.OutcomeProfileIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := DecodeCheckoutResponse(checkoutResponse(tt.status, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome.Kind)
		})
	}
}

func TestDecodeCheckoutResponse_SentinelTextFallback(t *testing.T) {
	// The backend sometimes emits the interrupt inside an error page whose
	// JSON parse fails; the raw-text scan must reach the same outcome.
	tests := []struct {
		name string
		body string
		want domain.OutcomeKind
	}{
		{"tax id sentinel in html", "<html><body>MISSING_TAX_ID: profile incomplete</body></html>", domain.OutcomeProfileIncomplete},
		{"complete-data sentinel", "error: require_complete_data", domain.OutcomeProfileIncomplete},
		{"no-customer sentinel in html", "<html>NO_CUSTOMER</html>", domain.OutcomeAuthRequired},
		{"require_login sentinel", "text: require_login", domain.OutcomeAuthRequired},
		{"unrecognized text", "<html>Internal Server Error</html>", domain.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := DecodeCheckoutResponse(checkoutResponse(http.StatusBadRequest, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome.Kind)
		})
	}
}

func TestDecodeCheckoutResponse_ProfileWinsOverLogin(t *testing.T) {
	// Both sentinels present: the profile branch is checked first on both
	// decode paths, so they stay convergent.
	structured, err := DecodeCheckoutResponse(checkoutResponse(http.StatusBadRequest,
		`{"require_login":true,"require_complete_data":true}`))
	require.NoError(t, err)

	text, err := DecodeCheckoutResponse(checkoutResponse(http.StatusBadRequest,
		"MISSING_TAX_ID and require_login"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeProfileIncomplete, structured.Kind)
	assert.Equal(t, structured.Kind, text.Kind)
}

func TestDecodeCheckoutResponse_Failure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", http.StatusOK, `{"success":false,"message":"stock ran out while you were browsing"}`, "stock ran out while you were browsing"},
		{"error field fallback", http.StatusOK, `{"success":false,"error":"ORDER_LIMIT"}`, "ORDER_LIMIT"},
		{"no message at all", http.StatusOK, `{"success":false}`, "Sorry, there was a problem processing your request. Please try again."},
		{"success flag on error status", http.StatusBadRequest, `{"success":true,"error":"rejected"}`, "rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := DecodeCheckoutResponse(checkoutResponse(tt.status, tt.body))
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
			assert.Equal(t, tt.wantMsg, outcome.Message)
		})
	}
}
