package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutResult_HasDiscount(t *testing.T) {
	tests := []struct {
		name   string
		result *CheckoutResult
		want   bool
	}{
		{"nil result", nil, false},
		{"no discount", &CheckoutResult{Total: 20000}, false},
		{"pct without subtotal", &CheckoutResult{Total: 18000, DiscountPct: 10}, false},
		{"subtotal without pct", &CheckoutResult{Total: 18000, SubtotalBeforeDiscount: 20000}, false},
		{"both present", &CheckoutResult{Total: 18000, DiscountPct: 10, SubtotalBeforeDiscount: 20000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.HasDiscount())
		})
	}
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "auth_required", OutcomeAuthRequired.String())
	assert.Equal(t, "profile_incomplete", OutcomeProfileIncomplete.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", OutcomeKind(42).String())
}
