package logic

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrQuotaExceeded   = errors.New("monthly prediction quota exceeded")
	ErrAlreadyRecorded = errors.New("result already recorded")
)

// QuotaError is returned when a free-tier user has used up their monthly
// distinct winner-candidates. It matches ErrQuotaExceeded under errors.Is.
type QuotaError struct {
	Limit int
	Used  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("free plan allows %d rikishi per month (%d used), upgrade to premium", e.Limit, e.Used)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// UpgradeRequired is always true; the caller routes the user to billing.
func (e *QuotaError) UpgradeRequired() bool { return true }

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
