package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport(cause)

	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "TRANSPORT_ERROR")
}

func TestBusinessRejected_PreservesServerMessage(t *testing.T) {
	err := BusinessRejected("insufficient stock for Gold Ring")

	assert.True(t, errors.Is(err, ErrBusinessRejected))
	assert.Equal(t, "insufficient stock for Gold Ring", UserMessage(err))
}

func TestBusinessRejected_EmptyMessageFallsBack(t *testing.T) {
	err := BusinessRejected("")
	assert.Equal(t, GenericRetryMessage, UserMessage(err))
}

func TestIsInterrupt(t *testing.T) {
	assert.True(t, IsInterrupt(AuthRequired()))
	assert.True(t, IsInterrupt(ProfileIncomplete()))
	assert.False(t, IsInterrupt(EmptyCart()))
	assert.False(t, IsInterrupt(Busy()))
	assert.False(t, IsInterrupt(Transport(errors.New("eof"))))
	assert.False(t, IsInterrupt(nil))
}

func TestIsInterrupt_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("submit checkout: %w", AuthRequired())
	assert.True(t, IsInterrupt(wrapped))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"client error message", EmptyCart(), "your cart is empty"},
		{"transport generic", Transport(errors.New("dial tcp: refused")), GenericRetryMessage},
		{"plain error text", errors.New("something odd"), "something odd"},
		{"nil error", nil, GenericRetryMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrEmptyCart, "submit")
	assert.True(t, errors.Is(err, ErrEmptyCart))
	assert.Equal(t, "submit: cart is empty", err.Error())
}
