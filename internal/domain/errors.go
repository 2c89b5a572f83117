package domain

import "errors"

var (
	// ErrUpstreamUnreachable is returned when the upstream source cannot be reached.
	// Callers should retry with backoff rather than treat the dataset as unchanged.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")

	// ErrMalformedExtract is returned when the upstream returned data that cannot be parsed.
	// It is not retryable.
	ErrMalformedExtract = errors.New("malformed extract")

	// ErrUnknownDataset is returned when a dataset is not declared in the schema catalog
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrCoercionThreshold is returned when the share of rows failing type coercion exceeds the configured limit
	ErrCoercionThreshold = errors.New("coercion failure rate exceeds threshold")

	// ErrUniquenessViolation is returned when a natural key or a table grain is not unique
	ErrUniquenessViolation = errors.New("uniqueness violation")

	// ErrConstraintViolation is returned when a curated table fails constraint validation at rebuild time
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrNonDeterministicAggregation is returned when unchanged curated input produced different feature payloads
	ErrNonDeterministicAggregation = errors.New("non-deterministic aggregation")

	// ErrRunLockHeld is returned when another run already holds the lease for a dataset group
	ErrRunLockHeld = errors.New("run lock held by another run")
)

// IsRetryable reports whether err is a transient failure worth retrying
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnreachable)
}
