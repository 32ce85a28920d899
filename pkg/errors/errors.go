// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrTradeNotFound   = errors.New("trade not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrMemberAlreadyJoined = errors.New("member already belongs to chapter")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTOTPRequired        = errors.New("totp code required")
	ErrInvalidTOTPCode     = errors.New("invalid totp code")

	// Aggregation errors
	ErrAggregationFailed = errors.New("aggregation failed")

	// Trade lifecycle errors
	ErrInvalidTransition     = errors.New("invalid trade status transition")
	ErrMpesaReferenceSet     = errors.New("mpesa reference already set")
	ErrMpesaReferenceTooSoon = errors.New("mpesa reference requires a paid trade")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Aggregation tags a failed read with ErrAggregationFailed so callers can
// match the failure kind with errors.Is while keeping the cause.
func Aggregation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrAggregationFailed, err)
}
