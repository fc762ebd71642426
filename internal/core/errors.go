package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation errors wrap ErrValidation so the transport layer can
// map the whole family without enumerating each sentinel. ErrNotFound covers both
// absent resources and resources owned by another user.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrReportGeneration = errors.New("report generation failed")

	ErrMissingUser            = fmt.Errorf("%w: missing user", ErrValidation)
	ErrInvalidAmount          = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription       = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong     = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrMissingCategory        = fmt.Errorf("%w: missing category", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidPaymentMethod   = fmt.Errorf("%w: invalid payment method", ErrValidation)
	ErrInvalidFrequency       = fmt.Errorf("%w: invalid recurring frequency", ErrValidation)
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidStatus          = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrEmptyName              = fmt.Errorf("%w: empty name", ErrValidation)
	ErrInvalidPeriod          = fmt.Errorf("%w: invalid budget period", ErrValidation)
	ErrEndBeforeStart         = fmt.Errorf("%w: end date before start date", ErrValidation)
	ErrInvalidThreshold       = fmt.Errorf("%w: threshold percentage out of range", ErrValidation)
	ErrInvalidPermission      = fmt.Errorf("%w: invalid share permission", ErrValidation)
	ErrInvalidCategoryType    = fmt.Errorf("%w: invalid category type", ErrValidation)
	ErrCategoryExists         = fmt.Errorf("%w: category already exists", ErrValidation)
	ErrDefaultCategory        = fmt.Errorf("%w: default categories cannot be modified", ErrValidation)
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
