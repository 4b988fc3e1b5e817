/*
errors.go - Centralized error types for the engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Packages wrap these with structured context where callers need details
  (which job holds the timer, which field failed validation).

ERROR CATEGORIES:
  1. Validation errors - Bad job payloads, rejected before any mutation
  2. Lifecycle errors  - Illegal state transitions (double completion)
  3. Timer errors      - Single-active-timer invariant violations
  4. Store errors      - Persistence-level failures

USAGE:
  if errors.Is(err, core.ErrTimerActive) {
      // another job holds the timer
  }
  var conflict *core.TimerConflictError
  if errors.As(err, &conflict) {
      log.Printf("timer held by %s", conflict.ActiveJobID)
  }

SEE ALSO:
  - timer/: Returns TimerConflictError
  - jobs/: Returns ValidationError and lifecycle sentinels
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrJobNotFound is returned when a referenced job doesn't exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyCompleted is returned when completing a job twice.
	// Completion realizes revenue and XP exactly once; a second attempt
	// must not double-count.
	ErrJobAlreadyCompleted = errors.New("job already completed")

	// ErrTimerActive is returned when starting a timer while a different
	// job's timer is running or paused. At most one timer exists.
	ErrTimerActive = errors.New("another job's timer is active")

	// ErrNoActiveTimer is returned by operations that need a timer when
	// none exists. Note: Stop with no timer is a no-op, not this error.
	ErrNoActiveTimer = errors.New("no active timer")

	// ErrValidation is the base error for rejected job payloads.
	ErrValidation = errors.New("validation failed")

	// ErrSettingsMissing is returned when an operation needs company
	// settings that were never configured.
	ErrSettingsMissing = errors.New("company settings not configured")

	// ErrUserMissing is returned when no user profile exists yet.
	ErrUserMissing = errors.New("no user profile")

	// ErrStoreFailed wraps persistence-level failures. Saves are
	// best-effort: in-memory state stands even when this is returned.
	ErrStoreFailed = errors.New("persistence failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimerConflictError reports which job holds the timer when a Start for a
// different job is rejected.
type TimerConflictError struct {
	RequestedJobID JobID
	ActiveJobID    JobID
}

func (e *TimerConflictError) Error() string {
	return fmt.Sprintf("cannot start timer for %s: timer active for %s",
		e.RequestedJobID, e.ActiveJobID)
}

func (e *TimerConflictError) Unwrap() error { return ErrTimerActive }

// ValidationError reports the first field that failed job validation.
// The creation is not attempted; no state was mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a rejected state transition (HTTP 4xx territory).
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrTimerActive) ||
		errors.Is(err, ErrJobAlreadyCompleted) ||
		errors.Is(err, ErrSettingsMissing)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrUserMissing)
}
