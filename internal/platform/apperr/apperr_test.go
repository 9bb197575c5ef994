package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("location", "Please select the location"), http.StatusBadRequest},
		{"not found", NotFound("visit"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get visit: %w", NotFound("visit")), http.StatusNotFound},
		{"forbidden", Forbidden("Admin access required"), http.StatusForbidden},
		{"conflict", Conflict("already completed"), http.StatusConflict},
		{"unauthorized", Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestToHTTP_KeepsMessage(t *testing.T) {
	he := ToHTTP(fmt.Errorf("save: %w", Validation("screening_completed_by", "screening_completed_by is required")))
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
	if he.Message != "screening_completed_by is required" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestToHTTP_HidesInternalErrors(t *testing.T) {
	he := ToHTTP(errors.New("pq: relation does not exist"))
	if he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("internal error leaked: %v", he.Message)
	}
}

func TestValidation_IsKind(t *testing.T) {
	err := Validation("x", "bad x")
	if !errors.Is(err, ErrValidation) {
		t.Error("expected validation kind")
	}
	if FieldOf(err) != "x" {
		t.Errorf("expected field x, got %q", FieldOf(err))
	}
}
