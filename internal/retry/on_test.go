package retry_test

import (
	"errors"
	"io"
	"net"
	"net/http"
	"testing"

	"baseline-cli/internal/retry"
)

func TestNewRetryOnFromString(t *testing.T) {
	t.Run("NamedConditions", func(t *testing.T) {
		on, err := retry.NewRetryOnFromString("5xx,connect-failure")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !on.CheckResponse(&http.Response{StatusCode: 500}) {
			t.Error("Expected 5xx to retry a 500 response")
		}
		if !on.CheckError(io.EOF) {
			t.Error("Expected connect-failure to retry a dropped connection")
		}
	})

	t.Run("StatusCodes", func(t *testing.T) {
		on, err := retry.NewRetryOnFromString("429")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !on.CheckResponse(&http.Response{StatusCode: 429}) {
			t.Error("Expected explicit status code to retry")
		}
		if on.CheckResponse(&http.Response{StatusCode: 500}) {
			t.Error("Expected unlisted status code to not retry")
		}
	})

	t.Run("InvalidCondition", func(t *testing.T) {
		if _, err := retry.NewRetryOnFromString("bogus"); err == nil {
			t.Error("Expected an error for an unknown condition")
		}
	})
}

func TestDefaultRetryOn(t *testing.T) {
	on := retry.NewDefaultRetryOn()

	t.Run("CheckResponse", func(t *testing.T) {
		for statusCode, want := range map[int]bool{
			502: true,  // gateway-error
			504: true,  // gateway-error
			409: true,  // retriable-4xx
			500: false, // plain 5xx is not retried by default
			404: false,
		} {
			if got := on.CheckResponse(&http.Response{StatusCode: statusCode}); got != want {
				t.Errorf("CheckResponse(%d) = %v, want %v", statusCode, got, want)
			}
		}
	})

	t.Run("CheckError", func(t *testing.T) {
		if !on.CheckError(io.EOF) {
			t.Error("Expected EOF to count as a connect failure")
		}
		if !on.CheckError(&net.DNSError{IsTemporary: true}) {
			t.Error("Expected a temporary network error to retry")
		}
		if on.CheckError(errors.New("permanent")) {
			t.Error("Expected a permanent error to not retry")
		}
	})
}
