package directory

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// UpstreamError reports a failed directory call. It is never returned for an
// empty result.
type UpstreamError struct {
	Op         string
	Key        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("directory: %s %q: status %d: %v", e.Op, e.Key, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("directory: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotFound reports whether the directory answered 404.
func (e *UpstreamError) NotFound() bool {
	return e != nil && e.StatusCode == http.StatusNotFound
}

// Unauthorized reports whether the service credential was rejected.
func (e *UpstreamError) Unauthorized() bool {
	return e != nil && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

func wrapError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	upstream := &UpstreamError{Op: op, Key: key, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		upstream.StatusCode = apiErr.Code
	}
	return upstream
}
