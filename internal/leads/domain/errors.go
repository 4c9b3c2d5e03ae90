package domain

import (
	"errors"
	"fmt"

	"outreach_backend/platform/apperr"
)

// Sentinel errors for the closed set of pipeline failure kinds. Callers
// match with errors.Is; the HTTP layer maps the wrapping *apperr.Error.
var (
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrMissingPlaceholderData = errors.New("missing placeholder data")
	ErrNotApproved            = errors.New("lead not approved")
	ErrNoRecipient            = errors.New("no recipient email")
	ErrDailyCapExceeded       = errors.New("daily send cap exceeded")
	ErrBatchTooLarge          = errors.New("batch too large")
	ErrDemoModeBlocked        = errors.New("blocked by demo mode")
	ErrTransportFailure       = errors.New("mail transport failure")
)

// InvalidTransition builds the typed error for a rejected status transition,
// naming the current and requested statuses.
func InvalidTransition(from, to string) *apperr.Error {
	return apperr.Wrap(
		apperr.KindConflict,
		fmt.Sprintf("cannot transition lead from %q to %q", from, to),
		ErrInvalidTransition,
	).WithDetails(map[string]string{"from": from, "to": to})
}

// MissingPlaceholders builds the typed error for unresolved template
// placeholders, listing the placeholders that could not be filled.
func MissingPlaceholders(placeholders []string) *apperr.Error {
	return apperr.Wrap(
		apperr.KindValidation,
		"template placeholders could not be resolved",
		ErrMissingPlaceholderData,
	).WithDetails(map[string]interface{}{"placeholders": placeholders})
}

// NotApproved builds the typed error for a send attempted on a lead whose
// status is not approved.
func NotApproved(status string) *apperr.Error {
	return apperr.Wrap(
		apperr.KindConflict,
		fmt.Sprintf("lead status is %q, send requires approved", status),
		ErrNotApproved,
	)
}

// NoRecipient builds the typed error for a lead without a usable primary
// contact email.
func NoRecipient() *apperr.Error {
	return apperr.Wrap(apperr.KindValidation, "lead has no valid recipient email", ErrNoRecipient)
}

// DailyCapExceeded builds the typed error for an exhausted daily quota.
func DailyCapExceeded(limit int) *apperr.Error {
	return apperr.Wrap(
		apperr.KindConflict,
		fmt.Sprintf("daily send limit of %d reached", limit),
		ErrDailyCapExceeded,
	)
}

// BatchTooLarge builds the typed error for an oversized batch request.
func BatchTooLarge(requested, limit int) *apperr.Error {
	return apperr.Wrap(
		apperr.KindValidation,
		fmt.Sprintf("batch of %d exceeds limit of %d", requested, limit),
		ErrBatchTooLarge,
	).WithDetails(map[string]int{"requested": requested, "limit": limit})
}

// DemoModeBlocked builds the typed error for a send rejected by demo mode.
func DemoModeBlocked() *apperr.Error {
	return apperr.Wrap(apperr.KindForbidden, "demo mode is enabled, sending is disabled", ErrDemoModeBlocked)
}

// TransportFailure builds the typed error wrapping a mail transport error.
func TransportFailure(err error) *apperr.Error {
	return &apperr.Error{
		Kind:    apperr.KindUnavailable,
		Message: "mail transport failed",
		Err:     fmt.Errorf("%w: %w", ErrTransportFailure, err),
	}
}
