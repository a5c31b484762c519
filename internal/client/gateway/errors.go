package gateway

import (
	"errors"
	"fmt"
	"net"
)

// ErrBadPayload marks a response that decoded but failed schema validation
// at the gateway boundary (missing id, unparsable date, absent data field).
var ErrBadPayload = errors.New("malformed server response")

// StatusError is the typed failure for any gateway call that reached the
// server. Status carries the HTTP status code; callers classify it with the
// Is* predicates rather than inspecting the code directly.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsAuthExpired reports a 401-class failure: the access credential was
// rejected. This is the only class that triggers a session refresh.
func IsAuthExpired(err error) bool {
	return statusOf(err) == 401
}

// IsNotFound reports a 404-class failure. For deletes this is success of
// intent; for the active draft it means the backing entry vanished.
func IsNotFound(err error) bool {
	return statusOf(err) == 404
}

// IsValidation reports a request the server rejected as invalid. Surfaced
// synchronously for manual actions, logged only for debounced saves.
func IsValidation(err error) bool {
	s := statusOf(err)
	return s == 400 || s == 422
}

// IsTransient reports a failure worth retrying on the next edit: network or
// timeout errors that never reached the server, and 5xx responses.
// context.DeadlineExceeded implements net.Error, so client-side timeouts are
// covered by the net.Error branch.
func IsTransient(err error) bool {
	if s := statusOf(err); s >= 500 {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
