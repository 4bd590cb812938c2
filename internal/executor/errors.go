package executor

import (
	"fmt"
)

// TargetFailure is the terminal error of a failed target.
type TargetFailure struct {
	Target string
	Cause  error
}

func (e *TargetFailure) Error() string {
	return fmt.Sprintf("target %q failed: %v", e.Target, e.Cause)
}

func (e *TargetFailure) Unwrap() error { return e.Cause }

// ArtifactMissingError reports a declared output pattern that matched nothing
// after the action returned.
type ArtifactMissingError struct {
	Target  string
	Pattern string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("target %q declared output %q but no file matches", e.Target, e.Pattern)
}

// CancellationError marks a target that was stopped by the run's timeout or
// cancellation signal.
type CancellationError struct {
	Cause error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled: %v", e.Cause)
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// PanicError carries a recovered panic from an action or a guard.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
