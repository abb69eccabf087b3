package qproof

import (
	"errors"
	"fmt"
)

var ErrEntropyUnavailable = errors.New("entropy unavailable")

// OptimizationFailedError carries the engine's failure reason unchanged.
type OptimizationFailedError struct {
	Reason string
	Err    error
}

func (e *OptimizationFailedError) Error() string {
	return fmt.Sprintf("optimization failed: %s", e.Reason)
}

func (e *OptimizationFailedError) Unwrap() error { return e.Err }

func entropyUnavailable(cause error) error {
	if cause == nil {
		return ErrEntropyUnavailable
	}
	return fmt.Errorf("%w: %w", ErrEntropyUnavailable, cause)
}

func optimizationFailed(cause error) error {
	return &OptimizationFailedError{Reason: cause.Error(), Err: cause}
}
