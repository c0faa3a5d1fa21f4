package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is terminal: the refresh token was rejected or missing,
// the stored session has been cleared, and the caller must re-authenticate.
var ErrSessionExpired = errors.New("session expired")

// APIError is a failure the server reported with an {"error": "..."} body.
// The message is surfaced verbatim so credential errors read exactly as the
// server phrased them.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

// decodeAPIError turns a non-2xx response body into an *APIError.
func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{Status: status, Message: payload.Error}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

// IsUnauthorized reports whether err is a server-side 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
