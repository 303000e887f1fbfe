package progress

import "fmt"

// Kind classifies a TransitionError for HTTP mapping and handling.
type Kind int

const (
	// KindInvalidTransition marks a business-rule violation. Recoverable,
	// user-correctable; the job is left unchanged.
	KindInvalidTransition Kind = iota + 1
	// KindJobNotFound marks a stale job reference, recoverable by refetch.
	KindJobNotFound
	// KindDuplicateOperation marks a re-issuance attempt of a once-only
	// operation (return note).
	KindDuplicateOperation
	// KindSideEffectFailure marks a notification or document call that
	// failed after the transition was already committed. Non-blocking.
	KindSideEffectFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidTransition:
		return "invalid_transition"
	case KindJobNotFound:
		return "job_not_found"
	case KindDuplicateOperation:
		return "duplicate_operation"
	case KindSideEffectFailure:
		return "side_effect_failure"
	}
	return "unknown"
}

// TransitionError is the error surfaced by the state machine and the job
// service. Every instance is recoverable; nothing in this package is fatal.
type TransitionError struct {
	Kind    Kind
	Message string
}

func (e *TransitionError) Error() string { return e.Message }

func newInvalid(format string, args ...any) *TransitionError {
	return &TransitionError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds the error for a stale job reference.
func NotFound(jobRef string) *TransitionError {
	return &TransitionError{Kind: KindJobNotFound, Message: fmt.Sprintf("job %s not found", jobRef)}
}

// Duplicate builds the error for re-running a once-only operation.
func Duplicate(format string, args ...any) *TransitionError {
	return &TransitionError{Kind: KindDuplicateOperation, Message: fmt.Sprintf(format, args...)}
}
