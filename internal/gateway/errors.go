package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Failure kinds. Every error returned by Client matches exactly one of them
// with errors.Is.
var (
	ErrNetwork    = errors.New("network failure")
	ErrAuth       = errors.New("auth failure")
	ErrValidation = errors.New("validation failure")
	ErrNotFound   = errors.New("not found")
)

// APIError describes a failed gateway call.
type APIError struct {
	Kind       error
	StatusCode int               // 0 for transport or client-side failures
	Message    string            // server supplied message, if any
	Fields     map[string]string // field -> reason for validation failures
	Method     string
	Path       string
	Err        error // underlying transport error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Method != "" {
		fmt.Fprintf(&b, ": %s %s", e.Method, e.Path)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the failure kind.
func (e *APIError) Is(target error) bool {
	return target == e.Kind
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a payload rejected before it was sent.
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Kind:    ErrValidation,
		Message: "invalid payload",
		Fields:  fields,
	}
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func statusError(method, path string, status int, body *errorBody) *APIError {
	e := &APIError{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Method:     method,
		Path:       path,
	}
	if body != nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
		if len(body.Errors) > 0 {
			e.Fields = body.Errors
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 400 && status < 500:
		return ErrValidation
	default:
		return ErrNetwork
	}
}
