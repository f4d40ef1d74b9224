package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when PayPal client credentials are missing.
	ErrNotConfigured = errors.New("payments: paypal credentials not configured")
	// ErrMissingApprovalLink is returned when a created order carries no buyer approval link.
	ErrMissingApprovalLink = errors.New("payments: no approval url in paypal response")
	// ErrInvalidAmount is returned for amounts that are negative, carry sub-cent
	// digits, are not plain decimals, or exceed MaxAmount.
	ErrInvalidAmount = errors.New("payments: invalid amount")
)

// AuthError reports a failed client-credentials exchange.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("payments: paypal token exchange failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("payments: paypal token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError reports a non-2xx answer from the PayPal Orders API.
type ProviderError struct {
	Operation string
	Status    int
	Body      string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payments: paypal %s status %d: %s", e.Operation, e.Status, e.Body)
}

// NotFound reports whether PayPal answered 404.
func (e *ProviderError) NotFound() bool {
	return e.Status == 404
}
