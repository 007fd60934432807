package vendon

import (
	"errors"
	"fmt"
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string // truncated
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("vendon %s request failed: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("vendon %s request failed: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// AsStatusError unwraps err to a *StatusError, if it is one.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
