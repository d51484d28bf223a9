package rushx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors - configuration and session state.
var (
	ErrMissingBaseURL   = errors.New("rushx: base URL is required")
	ErrMissingWSBaseURL = errors.New("rushx: websocket base URL is required")
	ErrMissingToken     = errors.New("rushx: no access token available")
	ErrNotAuthenticated = errors.New("rushx: not authenticated")
	ErrNotHydrated      = errors.New("rushx: session has not been hydrated")
)

// Sentinel errors - token store.
var (
	ErrStorePersist   = errors.New("rushx: failed to persist token store")
	ErrStoreCorrupted = errors.New("rushx: token store corrupted")
)

// Sentinel errors - realtime channels.
var (
	ErrChannelClosed       = errors.New("rushx: channel is closed")
	ErrChannelReconnecting = errors.New("rushx: channel is reconnecting")
)

// Error is the normalized shape of any failed REST call: the server's
// human-readable detail (or a generic fallback), the HTTP status, and the
// raw decoded body for programmatic inspection.
type Error struct {
	// Message is the human-readable error message, taken from the server
	// "detail" field when present.
	Message string `json:"message"`
	// Status is the HTTP status code, zero for transport failures.
	Status int `json:"status,omitempty"`
	// Details is the decoded response body, when one was available.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("rushx: %s (HTTP %d)", e.Message, e.Status)
	}
	return "rushx: " + e.Message
}

// IsNotFound returns true for HTTP 404 responses.
func (e *Error) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsUnauthorized returns true for HTTP 401 responses.
func (e *Error) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsForbidden returns true for HTTP 403 responses.
func (e *Error) IsForbidden() bool {
	return e.Status == http.StatusForbidden
}

// IsValidationError returns true for HTTP 400 responses.
func (e *Error) IsValidationError() bool {
	return e.Status == http.StatusBadRequest
}

// IsServerError returns true for HTTP 5xx responses.
func (e *Error) IsServerError() bool {
	return e.Status >= 500
}

// genericFailureMessage mirrors the message the portals show when the server
// gives no usable detail.
const genericFailureMessage = "Request failed. Please try again."

// parseError normalizes a non-2xx response into an *Error. The body is
// decoded as JSON when possible; a "detail" field becomes the message.
func parseError(statusCode int, body []byte) *Error {
	apiErr := &Error{
		Message: genericFailureMessage,
		Status:  statusCode,
	}

	if len(body) == 0 {
		return apiErr
	}

	var details map[string]interface{}
	if err := json.Unmarshal(body, &details); err != nil {
		return apiErr
	}
	apiErr.Details = details

	if detail, ok := details["detail"].(string); ok && detail != "" {
		apiErr.Message = detail
	}
	return apiErr
}

// AsError unwraps err into an *Error when it originated from a REST call.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
