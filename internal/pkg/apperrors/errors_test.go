package apperrors

import (
	"errors"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("name", "cannot be empty")

	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected error to match ErrValidation")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a *ValidationError in the chain")
	}
	if ve.Field != "name" {
		t.Errorf("expected field %q, got %q", "name", ve.Field)
	}
}

func TestRemoteErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "Not Found", status: 404, want: ErrNotFound},
		{name: "Unauthorized", status: 401, want: ErrUnauthorized},
		{name: "Forbidden", status: 403, want: ErrUnauthorized},
		{name: "Server Error", status: 500, want: ErrRemote},
		{name: "Bad Request", status: 400, want: ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &RemoteError{Method: "GET", Path: "/customers/5", StatusCode: tt.status}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected status %d to match %v", tt.status, tt.want)
			}
		})
	}
}

func TestRemoteErrorMessage(t *testing.T) {
	err := &RemoteError{Method: "GET", Path: "/customers/5", StatusCode: 404, Body: []byte("{}")}
	expected := "GET /customers/5: status 404: {}"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestWrapTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapTransportError(cause, "list customers")

	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected error to match ErrTransport")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected error to wrap the cause")
	}
	if err.Error() != "[TRANSPORT] list customers: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
