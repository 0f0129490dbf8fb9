package core

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name: "http error with status",
			err: &APIError{
				Type:    ErrorTypeHTTP,
				Message: "upstream rejected the request",
				Status:  503,
			},
			expected: "http_error (status 503): upstream rejected the request",
		},
		{
			name: "network error without status",
			err: &APIError{
				Type:    ErrorTypeNetwork,
				Message: "network error: connection refused",
			},
			expected: "network_error: network error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	apiErr := NewNetworkError(originalErr)

	if unwrapped := apiErr.Unwrap(); unwrapped != originalErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantPayload bool
	}{
		{
			name:        "nested error message",
			status:      400,
			body:        `{"error":{"message":"Please use the beta base url","type":"invalid_request_error"}}`,
			wantMessage: "Please use the beta base url",
			wantPayload: true,
		},
		{
			name:        "top-level message",
			status:      429,
			body:        `{"message":"rate limited"}`,
			wantMessage: "rate limited",
			wantPayload: true,
		},
		{
			name:        "nested wins over top-level",
			status:      400,
			body:        `{"error":{"message":"nested"},"message":"top"}`,
			wantMessage: "nested",
			wantPayload: true,
		},
		{
			name:        "non-JSON body used verbatim",
			status:      502,
			body:        "Bad Gateway",
			wantMessage: "Bad Gateway",
			wantPayload: false,
		},
		{
			name:        "empty body falls back to generated message",
			status:      500,
			body:        "",
			wantMessage: "deepseek api error (status 500)",
			wantPayload: false,
		},
		{
			name:        "JSON body without message falls back to generated message",
			status:      404,
			body:        `{"detail":"missing"}`,
			wantMessage: "deepseek api error (status 404)",
			wantPayload: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ParseAPIError(tt.status, []byte(tt.body))
			if apiErr.Type != ErrorTypeHTTP {
				t.Errorf("Type = %v, want %v", apiErr.Type, ErrorTypeHTTP)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if got := apiErr.Payload != nil; got != tt.wantPayload {
				t.Errorf("Payload present = %v, want %v", got, tt.wantPayload)
			}
		})
	}
}

func TestAPIError_HasStatus(t *testing.T) {
	withStatus := ParseAPIError(500, nil)
	if !withStatus.HasStatus() {
		t.Error("expected HasStatus() = true for HTTP error")
	}
	withoutStatus := NewNetworkError(errors.New("dial tcp: refused"))
	if withoutStatus.HasStatus() {
		t.Error("expected HasStatus() = false for network error")
	}
}
