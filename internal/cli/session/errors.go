package session

import (
	"errors"
	"fmt"
)

// FallbackMessage is shown when the backend gives us nothing usable
const FallbackMessage = "Login failed. Please try again."

// Kind classifies authentication failures for display decisions
type Kind int

const (
	// KindValidation is malformed input caught before any network call
	KindValidation Kind = iota
	// KindInvalidCredentials is a 401-class rejection from the backend
	KindInvalidCredentials
	// KindNetwork means the request never reached the server
	KindNetwork
	// KindServer is a 5xx or malformed response
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// AuthError is a typed authentication failure. Message is always safe to show
// to the user: it carries the backend's detail text when present, else a
// generic fallback.
type AuthError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a local validation failure
func NewValidationError(message string) *AuthError {
	return &AuthError{Kind: KindValidation, Message: message}
}

// NewInvalidCredentials builds a 401-class failure
func NewInvalidCredentials(message string) *AuthError {
	if message == "" {
		message = FallbackMessage
	}
	return &AuthError{Kind: KindInvalidCredentials, Message: message}
}

// NewNetworkError builds a failure for requests that never reached the server
func NewNetworkError(err error) *AuthError {
	return &AuthError{Kind: KindNetwork, Message: "Could not reach the server. Check your connection.", Err: err}
}

// NewServerError builds a failure for 5xx or malformed responses
func NewServerError(message string, err error) *AuthError {
	if message == "" {
		message = FallbackMessage
	}
	return &AuthError{Kind: KindServer, Message: message, Err: err}
}

// AsAuthError unwraps err into an *AuthError if it is one
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// DisplayMessage extracts the user-facing message from any auth failure
func DisplayMessage(err error) string {
	if authErr, ok := AsAuthError(err); ok && authErr.Message != "" {
		return authErr.Message
	}
	return FallbackMessage
}

var (
	// ErrOperationInFlight is returned when a second auth operation starts
	// while one is outstanding. Callers are expected to disable the
	// triggering control while the store reports loading.
	ErrOperationInFlight = errors.New("an authentication operation is already in flight")

	// ErrClosed is returned by operations on a store whose consumers are gone
	ErrClosed = errors.New("session store is closed")
)
