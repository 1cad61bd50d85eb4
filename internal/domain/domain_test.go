package domain

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{Unauthenticated("x"), http.StatusUnauthorized},
		{InvalidToken("x"), http.StatusUnauthorized},
		{UserNotFound("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{ValidationFailed("x"), http.StatusUnprocessableEntity},
		{Internal("x", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.err.Kind, tc.status, tc.err.Status)
		}
	}
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Fatal("nil should stay nil")
	}

	wrapped := fmt.Errorf("handler: %w", Conflict("already liked"))
	if got := AsError(wrapped); got.Kind != KindConflict || got.Message != "already liked" {
		t.Fatalf("classified error not preserved: %+v", got)
	}

	cause := errors.New("database is locked")
	got := AsError(cause)
	if got.Kind != KindInternal || got.Message != "internal server error" {
		t.Fatalf("unexpected relabel: %+v", got)
	}
	if !errors.Is(got, cause) {
		t.Fatal("cause should stay reachable through Unwrap")
	}
	if !IsKind(got, KindInternal) || IsKind(cause, KindInternal) {
		t.Fatal("IsKind mismatch")
	}
}

func TestNewPage(t *testing.T) {
	page, err := NewPage(0, 0)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if page.No != DefaultPageNo || page.Size != DefaultPageSize || page.Offset() != 0 {
		t.Fatalf("unexpected default page: %+v", page)
	}

	page, err = NewPage(3, 50)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if page.Offset() != 100 || page.Limit() != 50 {
		t.Fatalf("unexpected window: offset %d limit %d", page.Offset(), page.Limit())
	}

	last := math.MaxInt/100 + 1
	page, err = NewPage(last, 100)
	if err != nil {
		t.Fatalf("last addressable page: %v", err)
	}
	if page.Offset() < 0 {
		t.Fatalf("offset overflowed: %d", page.Offset())
	}

	for _, tc := range []struct{ no, size int }{{-1, 20}, {1, 15}, {1, 1000}, {math.MaxInt, 100}, {math.MaxInt/10 + 2, 10}} {
		if _, err := NewPage(tc.no, tc.size); !IsKind(err, KindValidationFailed) {
			t.Errorf("NewPage(%d, %d): expected validation error, got %v", tc.no, tc.size, err)
		}
	}
}
