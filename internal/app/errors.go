package app

import "fmt"

// ValidationError rejects a submission whose payload cannot be normalized
// into a well-formed handoff. It is never retryable as-is.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

// IdempotencyConflictError rejects a submission that reuses an
// Idempotency-Key with a different baseline than the one recorded for it.
type IdempotencyConflictError struct {
	Key                string
	ExistingBaselineID string
	NewBaselineID      string
}

func (e *IdempotencyConflictError) Error() string {
	return fmt.Sprintf("idempotency key %s already used for baseline %s (got %s)", e.Key, e.ExistingBaselineID, e.NewBaselineID)
}

// BaselineCollisionError rejects a handoff whose target project already
// carries a different baseline at write time.
type BaselineCollisionError struct {
	ProjectID          string
	ExistingBaselineID string
	NewBaselineID      string
}

func (e *BaselineCollisionError) Error() string {
	return fmt.Sprintf("project %s already linked to baseline %s (got %s)", e.ProjectID, e.ExistingBaselineID, e.NewBaselineID)
}

// StorageError wraps infrastructure failures. Retryable tells the client
// whether resubmitting the same request can succeed.
type StorageError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
