package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	err = New(ErrCodeObjectNotFound, "gone", http.StatusNotFound)
	if err.Retryable {
		t.Error("OBJECT_NOT_FOUND should not be retryable")
	}
}

func TestObjectNotFound(t *testing.T) {
	err := ObjectNotFound("HDX/a.json")
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Message != "File or folder not found: HDX/a.json" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["path"] != "HDX/a.json" {
		t.Errorf("expected path detail, got %v", err.Details["path"])
	}
}

func TestCredentialsUnavailable(t *testing.T) {
	cause := fmt.Errorf("no provider")
	err := CredentialsUnavailable(cause)
	if err.Code != ErrCodeCredentialsUnavailable {
		t.Errorf("expected CREDENTIALS_UNAVAILABLE, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestProviderError_CarriesProviderMessage(t *testing.T) {
	err := ProviderError(fmt.Errorf("AccessDenied: denied"))
	if !strings.Contains(err.Message, "AccessDenied: denied") {
		t.Errorf("expected provider message in %q", err.Message)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
}

func TestMetaParseError(t *testing.T) {
	err := MetaParseError(fmt.Errorf("unexpected end of JSON input"))
	if err.Message != "Error reading meta.json: unexpected end of JSON input" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Code != ErrCodeMetaParseError {
		t.Errorf("expected META_PARSE_ERROR, got %s", err.Code)
	}
}

func TestInvalidInput_Field(t *testing.T) {
	err := InvalidInput("expiry", "must be greater than 600")
	if err.Details["field"] != "expiry" {
		t.Errorf("expected field=expiry, got %v", err.Details["field"])
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
	if _, ok := InvalidInput("", "x").Details["field"]; ok {
		t.Error("expected no field detail when field is empty")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := Internal(nil)
	if got := err.Error(); !strings.HasPrefix(got, "INTERNAL_ERROR: ") {
		t.Errorf("unexpected format %q", got)
	}
	err = Internal(fmt.Errorf("boom"))
	if got := err.Error(); !strings.Contains(got, "(cause: boom)") {
		t.Errorf("expected cause in %q", got)
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := Validation("bad").WithDetail("a", 1).WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestToResponse(t *testing.T) {
	resp := RateLimited().ToResponse()
	if resp.Error.Code != ErrCodeRateLimited {
		t.Errorf("expected RATE_LIMITED, got %s", resp.Error.Code)
	}
	if !resp.Error.Retryable {
		t.Error("expected retryable=true")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ObjectNotFound("x"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Code != ErrCodeObjectNotFound {
		t.Errorf("expected OBJECT_NOT_FOUND, got %s", appErr.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected plain error not to convert")
	}
}
