package sdk

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the service. Use errors.As to
// inspect the status code and the machine-readable error code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shelfdex: %s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// IsNotFound reports whether the error is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
