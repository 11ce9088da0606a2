package coach

import "errors"

// Error taxonomy surfaced by coach operations. Port and store failures are
// always wrapped in one of these and returned to the caller, never
// swallowed or retried here; retry policy belongs to the port adapter.
var (
	// ErrInvalidInput marks a request rejected before any state mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationFailed marks a problem-generation port failure.
	// The session returns to idle and progress is untouched.
	ErrGenerationFailed = errors.New("problem generation failed")

	// ErrGenerationTimeout marks a generation call aborted by its time box.
	ErrGenerationTimeout = errors.New("problem generation timed out")

	// ErrEvaluationFailed marks an evaluator port failure. No attempt is
	// recorded: an unverified verdict must never reach the progress store.
	ErrEvaluationFailed = errors.New("solution evaluation failed")

	// ErrEvaluationTimeout marks an evaluation call aborted by its time box.
	ErrEvaluationTimeout = errors.New("solution evaluation timed out")

	// ErrStoreUnavailable marks a persistence failure. The operation had
	// no effect.
	ErrStoreUnavailable = errors.New("progress store unavailable")
)
