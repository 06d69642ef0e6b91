// ABOUTME: Typed API errors returned by the client
// ABOUTME: Separates validation (422) field maps from authorization and generic failures

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

// FieldErrors maps a form field name to its first validation message
type FieldErrors map[string]string

// ValidationError is a 422 response carrying per-field messages
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return "validation failed"
		}
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errorBody is the backend's error envelope. Field messages arrive either as
// a list per field or as a single string.
type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return &ValidationError{Message: msg, Fields: parseFieldErrors(body.Errors)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

func parseFieldErrors(raw map[string]json.RawMessage) FieldErrors {
	fields := make(FieldErrors, len(raw))
	for name, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			if len(list) > 0 {
				fields[name] = list[0]
			}
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil && single != "" {
			fields[name] = single
		}
	}
	return fields
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// AsValidation extracts the field map of a 422 response
func AsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// Message returns the backend-provided message of an API or validation
// error, or fallback for transport failures
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if vErr, ok := AsValidation(err); ok && vErr.Message != "" {
		return vErr.Message
	}
	return fallback
}
