package utils

import "errors"

var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrInvalidPage        = errors.New("invalid page parameter")
	ErrInvalidPageSize    = errors.New("invalid page size parameter")
	ErrDatabaseError      = errors.New("database error")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrImageNotFound      = errors.New("restaurant image not found")
	ErrCategoryNotFound   = errors.New("tag category not found")
	ErrUnknownScoreField  = errors.New("unknown score field")
	ErrUnknownDimension   = errors.New("unknown scoring dimension")
	ErrInvalidWeights     = errors.New("invalid preference weights")
	ErrRunInProgress      = errors.New("scoring run already in progress")

	// Vector and provider failures.
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
	ErrProviderTransient  = errors.New("embedding provider transient failure")
	ErrProviderRejected   = errors.New("embedding provider rejected input")
	ErrMissingCredentials = errors.New("embedding provider credentials missing")
)

// IsRetryable reports whether err is worth another attempt against the provider.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderTransient)
}
