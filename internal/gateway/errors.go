// Package gateway forwards chat and image requests to an OpenRouter-compatible
// upstream API and maps the responses back.
package gateway

import (
	"fmt"
	"net/http"
)

// UpstreamError is returned for every failed upstream call. Status is the
// HTTP status the upstream answered with, or 0 when no response arrived
// (network error, timeout, cancelled context).
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Message)
	}

	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status a caller should answer with: the upstream status
// when it is an error status, 500 otherwise.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= http.StatusBadRequest && e.Status <= 599 {
		return e.Status
	}

	return http.StatusInternalServerError
}
