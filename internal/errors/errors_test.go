package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOfWalksWrappedChain(t *testing.T) {
	base := New(CodeUnauthorized, "token rejected", nil)
	wrapped := fmt.Errorf("list items: %w", base)

	if got := CodeOf(wrapped); got != CodeUnauthorized {
		t.Fatalf("expected %s, got %s", CodeUnauthorized, got)
	}
	if !IsCode(wrapped, CodeUnauthorized) {
		t.Fatal("expected IsCode to match wrapped code")
	}
	if CodeOf(errors.New("plain")) != CodeUnknown {
		t.Fatal("expected plain errors to report unknown")
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	tests := []struct {
		name string
		err  Error
		want string
	}{
		{"message wins", New(CodeTransport, "request failed", inner), "request failed"},
		{"wrapped error", New(CodeTransport, "", inner), "dial tcp: refused"},
		{"code only", New(CodeInFlight, "", nil), "in_flight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
	if !errors.Is(New(CodeTransport, "x", inner), inner) {
		t.Fatal("expected Unwrap to expose the wrapped error")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeTransport, true},
		{CodeServer, true},
		{CodeUnauthorized, false},
		{CodeValidation, false},
		{CodeNotFound, false},
	}
	for _, tt := range tests {
		if got := Retryable(New(tt.code, "", nil)); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
