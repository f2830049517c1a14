package fetch

import (
	"errors"
	"fmt"
)

// maxErrBodySize caps the amount of response body carried inside an
// error for an unexpected status code. This prevents unbounded error
// strings when a large response arrives with a wrong status.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")

	// ErrBodyTooLarge indicates the response body exceeded the
	// configured Defaults.MaxBody cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// UnexpectedStatusError is returned when [WithExpectStatus] was set
// and the response status code does not match.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}
