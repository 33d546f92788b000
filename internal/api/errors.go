package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error response body limit. Anything larger is not a structured error.
const maxErrorBodySize = 64 * 1024

// StatusError is returned for non-2xx backend responses. Detail carries the
// server-provided message from the `{"detail": "..."}` body when present.
type StatusError struct {
	Code   int
	Detail string
}

// Error returns the server detail, or a generic message when none was sent
func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend request failed with status %d", e.Code)
}

// errorDetail mirrors the backend's structured error body
type errorDetail struct {
	Detail string `json:"detail"`
}

// newStatusError drains the response body looking for a structured detail
func newStatusError(resp *http.Response) *StatusError {
	statusErr := &StatusError{Code: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return statusErr
	}

	var detail errorDetail
	if err := json.Unmarshal(body, &detail); err == nil {
		statusErr.Detail = detail.Detail
	}

	return statusErr
}
