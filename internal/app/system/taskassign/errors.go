package taskassign

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the engine, the tracker and the HTTP layer.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrNoEligibleCitizens = errors.New("no eligible citizens")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNotFound           = errors.New("not found")
	ErrStorage            = errors.New("storage failure")
)

// Error kinds as reported to API clients.
const (
	KindUnauthorized       = "unauthorized"
	KindValidation         = "validation"
	KindNoEligibleCitizens = "no_eligible_citizens"
	KindInvalidStatus      = "invalid_status"
	KindNotFound           = "not_found"
	KindStorage            = "storage"
)

// Kind maps err to its reported kind. Unknown errors are storage failures.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNoEligibleCitizens):
		return KindNoEligibleCitizens
	case errors.Is(err, ErrInvalidStatus):
		return KindInvalidStatus
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindStorage
	}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
