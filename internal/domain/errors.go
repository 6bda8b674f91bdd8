package domain

import "errors"

// Sentinel errors for the application. Callers match them with errors.Is;
// implementations wrap them with fmt.Errorf("...: %w", err) for context.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCodeExhausted      = errors.New("promo code exhausted")
	ErrPerUserLimit       = errors.New("per-user claim limit reached")
	ErrEmptyMessage       = errors.New("message has no text and no attachment")
	ErrMessageDeleted     = errors.New("message is deleted")
	ErrContention         = errors.New("too much contention, try again")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConflict signals an optimistic concurrency miss (a version check or
	// unique-key insert lost a race). It is retried by the transaction helper
	// and should never surface to callers directly.
	ErrConflict = errors.New("write conflict")
)
