package task

import "strings"

// transientErrorFragments is the allow-list of provider error texts that mark
// a failed task as retriable. Matching on human-readable message text is
// fragile by construction; the mechanism is isolated behind
// IsTransientErrorMessage so it can be swapped for typed error codes later.
var transientErrorFragments = []string{
	"model is overloaded",
	"resource has been exhausted",
	"service unavailable",
	"rate limit",
	"circuit breaker is open",
}

// IsTransientErrorMessage reports whether the given persisted task error
// message matches a known-transient provider failure.
func IsTransientErrorMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, fragment := range transientErrorFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
