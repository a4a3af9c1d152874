package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"

	"github.com/gemaluna/storefront-client/domain"
)

// Sentinel substrings the backend embeds in error bodies when it fails to
// emit the structured flags. Both delivery paths must converge on the same
// outcome, so the raw-text scan recognizes the same conditions as the
// structured decode.
const (
	sentinelNoCustomer     = "NO_CUSTOMER"
	sentinelRequireLogin   = "require_login"
	sentinelMissingTaxID   = "MISSING_TAX_ID"
	sentinelMissingAddress = "MISSING_ADDRESS"
	sentinelMissingPhone   = "MISSING_PHONE"
	sentinelCompleteData   = "require_complete_data"
)

// checkoutResponseBody is the structured shape of a checkout creation
// response. IDs arrive as numbers from some handlers and strings from others,
// so json.Number tolerates both.
type checkoutResponseBody struct {
	Success             bool        `json:"success"`
	RequireLogin        bool        `json:"require_login"`
	RequireCompleteData bool        `json:"require_complete_data"`
	Error               string      `json:"error"`
	Message             string      `json:"message"`
	OrderID             json.Number `json:"order_id"`
	InvoiceID           json.Number `json:"invoice_id"`
	Total               int64       `json:"total"`
	DiscountPct         int         `json:"classification_discount_pct"`
	SubtotalBeforeDisc  int64       `json:"subtotal_before_discount"`
}

// DecodeCheckoutResponse translates an HTTP checkout response into a tagged
// outcome. It tries the structured JSON shape first and falls back to
// scanning the raw body for sentinel substrings, because the backend emits
// the interrupt signal inconsistently (structured flags vs. error-page text).
// The response body is fully consumed; an error is returned only when the
// body cannot be read at all.
func DecodeCheckoutResponse(resp *http.Response) (*domain.CheckoutOutcome, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Transport(fmt.Errorf("read checkout response: %w", err))
	}

	// Unauthorized is the login interrupt regardless of body shape.
	if resp.StatusCode == http.StatusUnauthorized {
		return &domain.CheckoutOutcome{Kind: domain.OutcomeAuthRequired}, nil
	}

	var body checkoutResponseBody
	if json.Unmarshal(raw, &body) == nil {
		return decodeStructured(resp.StatusCode, &body), nil
	}

	return decodeSentinels(string(raw)), nil
}

// decodeStructured classifies a successfully parsed response body. Interrupt
// flags win over everything else: the backend sets them on otherwise
// arbitrary statuses.
func decodeStructured(status int, body *checkoutResponseBody) *domain.CheckoutOutcome {
	switch {
	case body.RequireCompleteData || isProfileSentinel(body.Error):
		return &domain.CheckoutOutcome{Kind: domain.OutcomeProfileIncomplete}

	case body.RequireLogin || strings.Contains(body.Error, sentinelNoCustomer):
		return &domain.CheckoutOutcome{Kind: domain.OutcomeAuthRequired}

	case body.Success && status < 400:
		return &domain.CheckoutOutcome{
			Kind: domain.OutcomeSuccess,
			Result: &domain.CheckoutResult{
				OrderID:                body.OrderID.String(),
				InvoiceID:              invoiceID(body.InvoiceID),
				Total:                  body.Total,
				DiscountPct:            body.DiscountPct,
				SubtotalBeforeDiscount: body.SubtotalBeforeDisc,
			},
		}

	default:
		return &domain.CheckoutOutcome{
			Kind:    domain.OutcomeFailed,
			Message: failureMessage(body),
		}
	}
}

// decodeSentinels classifies a body whose JSON parse failed by scanning for
// known sentinel substrings. Profile-data sentinels are checked before the
// login ones, matching the structured path's precedence.
func decodeSentinels(text string) *domain.CheckoutOutcome {
	switch {
	case isProfileSentinel(text):
		return &domain.CheckoutOutcome{Kind: domain.OutcomeProfileIncomplete}

	case strings.Contains(text, sentinelNoCustomer) || strings.Contains(text, sentinelRequireLogin):
		return &domain.CheckoutOutcome{Kind: domain.OutcomeAuthRequired}

	default:
		return &domain.CheckoutOutcome{
			Kind:    domain.OutcomeFailed,
			Message: apperrors.GenericRetryMessage,
		}
	}
}

func isProfileSentinel(text string) bool {
	return strings.Contains(text, sentinelMissingTaxID) ||
		strings.Contains(text, sentinelMissingAddress) ||
		strings.Contains(text, sentinelMissingPhone) ||
		strings.Contains(text, sentinelCompleteData)
}

func failureMessage(body *checkoutResponseBody) string {
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return apperrors.GenericRetryMessage
}

func invoiceID(n json.Number) string {
	if n.String() == "" {
		return ""
	}
	return n.String()
}
