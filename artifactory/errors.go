package artifactory

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch and probe failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates the node does not exist (HTTP 404). During a
	// crawl this is benign: the node vanished between discovery and fetch.
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates the endpoint rejected the request credentials (401).
	ErrAuth = errors.New("authentication failed")

	// ErrEndpoint indicates the base URL does not answer like an
	// Artifactory API.
	ErrEndpoint = errors.New("endpoint check failed")
)

// StatusError is returned for unexpected non-2xx responses on fetch.
// Carrying the status code lets callers log the exact failure while
// treating every status uniformly as transient.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Retryable reports whether a fetch failure is transient. Everything
// except a definitive 404 is retried: timeouts, 5xx, transport errors,
// even auth failures that appear mid-crawl after a successful probe.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}
