package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Messages surfaced for the two error kinds the gateway distinguishes beyond
// the upstream's own text.
const (
	MsgUnableToConnect  = "Unable to connect to the server"
	MsgNotAuthenticated = "Not authenticated"
)

// APIError is an error response from the upstream CRM. StatusCode is zero for
// network-level failures where no response was received.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// newNetworkError wraps a transport failure as the generic connectivity
// error; the underlying cause is logged, not surfaced.
func newNetworkError() *APIError {
	return &APIError{StatusCode: 0, Message: MsgUnableToConnect}
}

// errorBody is the best-effort shape of an upstream error payload.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newStatusError builds an APIError from a non-2xx response, extracting a
// message from the body when one is present. 401 always maps to the fixed
// authentication message.
func newStatusError(statusCode int, body []byte) *APIError {
	message := fmt.Sprintf("request failed with status %d", statusCode)

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			message = parsed.Message
		} else if parsed.Error != "" {
			message = parsed.Error
		}
	}

	if statusCode == http.StatusUnauthorized {
		message = MsgNotAuthenticated
	}

	return &APIError{StatusCode: statusCode, Message: message}
}

// AsAPIError unwraps err into an APIError, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// IsNotAuthenticated reports whether err is an upstream 401.
func IsNotAuthenticated(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNetworkError reports whether err is a connectivity failure with no
// upstream response.
func IsNetworkError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == 0
}
