package core

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrorType classifies where a failure happened.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates invalid or missing startup configuration.
	ErrorTypeConfiguration ErrorType = "configuration_error"
	// ErrorTypeNetwork indicates a transport-level failure before any HTTP
	// status was received (connect, DNS, timeout).
	ErrorTypeNetwork ErrorType = "network_error"
	// ErrorTypeHTTP indicates a non-2xx upstream response.
	ErrorTypeHTTP ErrorType = "http_error"
	// ErrorTypeJSONDecode indicates a 2xx response whose body was not valid JSON.
	ErrorTypeJSONDecode ErrorType = "json_decode_error"
	// ErrorTypeSerialization indicates the outbound payload could not be encoded.
	ErrorTypeSerialization ErrorType = "serialization_error"
)

// APIError is the error type for all DeepSeek API failures. Status is zero
// for failures that happened before a status code was received. Payload holds
// the parsed upstream error body when the body was valid JSON.
type APIError struct {
	Type    ErrorType
	Message string
	Status  int
	Payload json.RawMessage
	Err     error `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Type, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface.
func (e *APIError) Unwrap() error {
	return e.Err
}

// HasStatus reports whether an HTTP status code was received for this failure.
func (e *APIError) HasStatus() bool {
	return e.Status != 0
}

// NewConfigurationError creates a configuration error (fatal at startup).
func NewConfigurationError(message string) *APIError {
	return &APIError{Type: ErrorTypeConfiguration, Message: message}
}

// NewNetworkError creates a network-level error with no status code.
func NewNetworkError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNetwork,
		Message: "network error: " + err.Error(),
		Err:     err,
	}
}

// NewJSONDecodeError creates an error for a 2xx response with an unparsable body.
func NewJSONDecodeError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeJSONDecode,
		Message: "deepseek api returned invalid JSON: " + err.Error(),
		Err:     err,
	}
}

// NewSerializationError creates an error for an unencodable outbound payload.
func NewSerializationError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeSerialization,
		Message: "failed to encode request payload: " + err.Error(),
		Err:     err,
	}
}

// ParseAPIError builds the error for a non-2xx upstream response. The message
// is taken from error.message, then a top-level message, in the parsed JSON
// body; a non-JSON but non-empty body is used verbatim; otherwise a generic
// status-based message is generated. The payload is attached only when the
// body parsed as JSON.
func ParseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Type: ErrorTypeHTTP, Status: status}

	if json.Valid(body) {
		apiErr.Payload = json.RawMessage(append([]byte(nil), body...))
		if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String {
			apiErr.Message = msg.String()
		} else if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
			apiErr.Message = msg.String()
		}
	} else if len(body) > 0 {
		apiErr.Message = string(body)
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("deepseek api error (status %d)", status)
	}
	return apiErr
}
