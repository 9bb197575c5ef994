package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/poshable/visitlog/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	svc, _, store := newTestService()
	t.Cleanup(store.Close)
	return NewHandler(svc), echo.New()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withActor(req *http.Request, a auth.Actor) *http.Request {
	return req.WithContext(auth.WithActor(req.Context(), a))
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler(t)

	body := `{"email":"jane@example.com","password":"pw","full_name":"Jane Doe","title":"RN"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", body), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		AccessToken string          `json:"access_token"`
		Nurse       json.RawMessage `json:"nurse"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.AccessToken == "" {
		t.Error("expected access token")
	}
	if strings.Contains(string(resp.Nurse), "password") {
		t.Error("password hash must not be serialized")
	}
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	h, e := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"x@y.z","password":"bad"}`), rec)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnauthorized || he.Message != "Invalid credentials" {
		t.Errorf("unexpected error %d %v", he.Code, he.Message)
	}
}

func TestHandler_Me(t *testing.T) {
	h, e := newTestHandler(t)
	member := register(t, h.svc, "me@example.com", "Me Myself")

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), member.Actor())
	rec := httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Me Myself") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Demote_Self(t *testing.T) {
	h, e := newTestHandler(t)
	admin := register(t, h.svc, "admin@example.com", "Admin")

	req := withActor(httptest.NewRequest(http.MethodPost, "/", nil), admin.Actor())
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(admin.ID.String())

	err := h.Demote(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Promote_InvalidID(t *testing.T) {
	h, e := newTestHandler(t)

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Promote(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_SetAssignments(t *testing.T) {
	h, e := newTestHandler(t)
	member := register(t, h.svc, "n@example.com", "N")

	body := `{"assigned_patients":[],"assigned_organizations":["Jericho"],"allowed_forms":["nurse_visit"]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/", body), rec)
	c.SetParamNames("id")
	c.SetParamValues(member.ID.String())

	if err := h.SetAssignments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Staff
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got.AllowedForms) != 1 || got.AllowedForms[0] != "nurse_visit" {
		t.Errorf("unexpected allowed forms %v", got.AllowedForms)
	}
}

func TestHandler_RequireAdminOnAdminRoutes(t *testing.T) {
	h, e := newTestHandler(t)
	register(t, h.svc, "admin@example.com", "Admin")
	nurse := register(t, h.svc, "nurse@example.com", "Nurse")

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(withActor(c.Request(), nurse.Actor()))
			return next(c)
		}
	})
	h.RegisterRoutes(e.Group("/api"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/nurses", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}
