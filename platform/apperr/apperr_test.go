package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Internal("x"), http.StatusInternalServerError},
		{Unavailable("x"), http.StatusServiceUnavailable},
		{New(KindUnknown, "x"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("kind %d: expected %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestGetKindFollowsWrapping(t *testing.T) {
	base := Unavailable("Service configuration error")
	wrapped := fmt.Errorf("capture: %w", base)

	if !Is(wrapped, KindUnavailable) {
		t.Fatalf("expected wrapped error to report KindUnavailable")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected plain error to be KindUnknown")
	}
}

func TestErrorIncludesOp(t *testing.T) {
	err := NotFound("listing not found").WithOp("listings.Get")
	if err.Error() != "listings.Get: listing not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "Failed to capture lead", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Error() != "Failed to capture lead" {
		t.Fatalf("expected message without cause, got %q", err.Error())
	}
}
