package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newContextWithActor(a *Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/nurses", nil)
	if a != nil {
		req = req.WithContext(WithActor(req.Context(), *a))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireAdmin_Allows(t *testing.T) {
	c, rec := newContextWithActor(&Actor{ID: uuid.New(), IsAdmin: true})
	if err := RequireAdmin()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdmin_RejectsNurse(t *testing.T) {
	c, _ := newContextWithActor(&Actor{ID: uuid.New()})
	err := RequireAdmin()(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
	if httpErr.Message != "Admin access required" {
		t.Errorf("unexpected message %v", httpErr.Message)
	}
}

func TestRequireAdmin_RejectsAnonymous(t *testing.T) {
	c, _ := newContextWithActor(nil)
	err := RequireAdmin()(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMustActor(t *testing.T) {
	a := Actor{ID: uuid.New(), FullName: "Ann Lee"}
	c, _ := newContextWithActor(&a)
	got, err := MustActor(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("expected %s, got %s", a.ID, got.ID)
	}

	c, _ = newContextWithActor(nil)
	if _, err := MustActor(c); err == nil {
		t.Error("expected error without actor")
	}
}
