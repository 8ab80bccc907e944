package identity

import "slices"

const defaultFailureMessage = "operation failed"

// Result is the outcome of a session-mutating operation. Errors is empty if
// and only if Succeeded is true.
type Result struct {
	Succeeded bool
	Errors    []string
}

// Success returns a successful result with an empty error list.
func Success() Result {
	return Result{Succeeded: true, Errors: []string{}}
}

// Failure returns a failed result carrying the given messages in order.
// Empty messages are dropped; a failure never has an empty error list.
func Failure(messages ...string) Result {
	errs := make([]string, 0, len(messages))
	for _, m := range messages {
		if m != "" {
			errs = append(errs, m)
		}
	}
	if len(errs) == 0 {
		errs = append(errs, defaultFailureMessage)
	}
	return Result{Succeeded: false, Errors: errs}
}

// Equal reports whether two results carry identical content.
func (r Result) Equal(other Result) bool {
	return r.Succeeded == other.Succeeded && slices.Equal(r.Errors, other.Errors)
}
