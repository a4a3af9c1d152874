package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the cart/checkout error taxonomy.
var (
	// ErrTransport marks a network-level failure: the request never completed,
	// so the client cannot know whether the server applied it.
	ErrTransport = errors.New("transport failure")

	// ErrBusinessRejected marks a structured server-side rejection with a
	// human-readable reason (insufficient stock, invalid payment amount, ...).
	ErrBusinessRejected = errors.New("business rejection")

	// ErrAuthRequired is a checkout interrupt, not a failure: the user must
	// log in before the order can proceed.
	ErrAuthRequired = errors.New("authentication required")

	// ErrProfileIncomplete is a checkout interrupt: the customer profile is
	// missing required data (tax ID, address, or phone).
	ErrProfileIncomplete = errors.New("customer profile incomplete")

	// ErrEmptyCart is a local precondition failure raised before any network call.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrBusy is returned when a mutating operation arrives while another is
	// still in flight.
	ErrBusy = errors.New("cart operation already in progress")
)

// GenericRetryMessage is shown when the server supplied no usable reason.
const GenericRetryMessage = "Sorry, there was a problem processing your request. Please try again."

// ClientError is a structured error carrying a machine code and the best
// available human-readable message.
type ClientError struct {
	Code    string
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Transport wraps a network-level failure.
func Transport(err error) *ClientError {
	return &ClientError{
		Code:    "TRANSPORT_ERROR",
		Message: GenericRetryMessage,
		Err:     fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// BusinessRejected wraps a server rejection, preserving the server's message verbatim.
func BusinessRejected(message string) *ClientError {
	if message == "" {
		message = GenericRetryMessage
	}
	return &ClientError{
		Code:    "BUSINESS_REJECTED",
		Message: message,
		Err:     ErrBusinessRejected,
	}
}

// AuthRequired creates the login interrupt error.
func AuthRequired() *ClientError {
	return &ClientError{
		Code:    "AUTH_REQUIRED",
		Message: "please log in to continue",
		Err:     ErrAuthRequired,
	}
}

// ProfileIncomplete creates the profile-completion interrupt error.
func ProfileIncomplete() *ClientError {
	return &ClientError{
		Code:    "PROFILE_INCOMPLETE",
		Message: "customer profile is missing required data",
		Err:     ErrProfileIncomplete,
	}
}

// EmptyCart creates the empty-cart precondition error.
func EmptyCart() *ClientError {
	return &ClientError{
		Code:    "EMPTY_CART",
		Message: "your cart is empty",
		Err:     ErrEmptyCart,
	}
}

// Busy creates the concurrent-mutation error.
func Busy() *ClientError {
	return &ClientError{
		Code:    "BUSY",
		Message: "another cart operation is in progress, please wait",
		Err:     ErrBusy,
	}
}

// InvalidInput creates a local validation error (no network call made).
func InvalidInput(message string) *ClientError {
	return &ClientError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrBusinessRejected,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsInterrupt reports whether the error is a checkout interrupt (login or
// profile completion) rather than a failure. Interrupts are resolved by a
// redirect and must never surface as user-visible errors.
func IsInterrupt(err error) bool {
	return errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrProfileIncomplete)
}

// UserMessage returns the best human-readable text for an error: the server
// message when one was preserved, the generic retry message otherwise.
func UserMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	if errors.Is(err, ErrTransport) {
		return GenericRetryMessage
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return GenericRetryMessage
}
