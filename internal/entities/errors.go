package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrFAQNotFound is an expected miss of the local FAQ lookup.
	ErrFAQNotFound = errors.New("faq: no matching topic")
	// ErrBackendUnavailable marks a failed AI or NLU stage.
	ErrBackendUnavailable = errors.New("knowledge backend unavailable")
	// ErrNotConfigured is returned by a transport or backend whose credentials are unset.
	ErrNotConfigured = errors.New("not configured")
	// ErrMalformedPayload is returned when a webhook body lacks sender or text.
	ErrMalformedPayload = errors.New("incomplete webhook payload")
	// ErrUnsupportedLanguage rejects language codes outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrInvalidPhone rejects malformed subscriber identifiers.
	ErrInvalidPhone = errors.New("invalid phone")
)

// TransportError wraps a failed send on a channel.
type TransportError struct {
	Channel string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Channel, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }
