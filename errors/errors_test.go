package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorString(t *testing.T) {
	err := NotFound("listing", "42")
	want := "NOT_FOUND: The requested listing was not found."
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestAppErrorStringWithCause(t *testing.T) {
	cause := stderrors.New("row missing")
	err := NotFound("listing", "").WithCause(cause)
	got := err.Error()
	if got != "NOT_FOUND: The requested listing was not found. (cause: row missing)" {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Unauthorized(""))
	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected to extract AppError from wrapped chain")
	}
	if appErr.Code != ErrCodeUnauthorized {
		t.Errorf("got code %s, want %s", appErr.Code, ErrCodeUnauthorized)
	}
}

func TestRetryableCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeServiceUnavailable, true},
		{ErrCodeConnectionFailed, true},
		{ErrCodeTimeout, true},
		{ErrCodeNotFound, false},
		{ErrCodeUnauthorized, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		if got := IsRetryableCode(tt.code); got != tt.want {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	if got := HTTPStatus(Forbidden("")); got != http.StatusForbidden {
		t.Errorf("got %d, want %d", got, http.StatusForbidden)
	}
	if got := HTTPStatus(stderrors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("got %d, want %d for plain error", got, http.StatusInternalServerError)
	}
}

func TestToResponseMasksPlainErrors(t *testing.T) {
	resp := ToResponse(stderrors.New("secret database details"))
	if resp.Error.Code != ErrCodeInternal {
		t.Errorf("got code %s, want %s", resp.Error.Code, ErrCodeInternal)
	}
	if resp.Error.Message == "secret database details" {
		t.Error("plain error message leaked into response")
	}
}

func TestWithDetail(t *testing.T) {
	err := Validation("bad payload").WithDetail("field", "event")
	if err.Details["field"] != "event" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}
