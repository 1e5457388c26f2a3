package youtube

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

var (
	ErrMissingAPIKey   = errors.New("youtube: api key required")
	ErrChannelNotFound = errors.New("youtube: channel not found")
)

// APIError reports a failed Data API request. Body holds the upstream
// response body as text when the API answered at all.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("YouTube API error: %s (%d): %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("YouTube API error: %s: %s", e.Endpoint, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(endpoint string, err error) *APIError {
	apiErr := &APIError{Endpoint: endpoint, Err: err}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		apiErr.StatusCode = gErr.Code
		apiErr.Body = gErr.Body
	}
	if apiErr.Body == "" {
		apiErr.Body = err.Error()
	}

	return apiErr
}
