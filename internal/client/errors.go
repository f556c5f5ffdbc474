// ABOUTME: Error taxonomy for API calls
// ABOUTME: Classifies transport, authorization, rejection, and server failures

package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// GenericMessage is shown when no better explanation is available
const GenericMessage = "Something went wrong, please try again"

// ErrorKind classifies an API failure
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindRejected
	KindServer
	KindDecode
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindRejected:
		return "rejected"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// APIError is returned for every failed API call
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindNetwork, KindDecode:
		if e.Err != nil && e.Message != "request canceled" && e.Message != "request timed out" {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	default:
		if e.Message != "" {
			return fmt.Sprintf("backend error: %s", e.Message)
		}
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// kindForStatus maps an HTTP status to an ErrorKind
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindRejected
	}
}

// messagePaths are tried in order against an error body
var messagePaths = []string{
	"message",
	"error.issues.0.message",
	"error.message",
	"error",
	"details",
}

// extractMessage pulls a human-readable message out of an error body.
// Returns "" when the shape is unrecognized.
func extractMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range messagePaths {
		res := gjson.GetBytes(body, path)
		if res.Type == gjson.String {
			if msg := strings.TrimSpace(res.String()); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// Message returns the best user-facing message for err.
// Server-provided messages win; otherwise a kind-specific or generic text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return GenericMessage
	}
	switch apiErr.Kind {
	case KindNetwork:
		if apiErr.Message == "request timed out" {
			return "The server took too long to respond"
		}
		return "Cannot reach the server, check your connection"
	case KindUnauthorized:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Your session has expired, please sign in again"
	case KindNotFound:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "The requested item was not found"
	case KindRejected, KindServer:
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return GenericMessage
}
