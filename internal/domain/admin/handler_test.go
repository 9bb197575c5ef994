package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/poshable/visitlog/internal/platform/auth"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withActor(req *http.Request, a auth.Actor) *http.Request {
	return req.WithContext(auth.WithActor(req.Context(), a))
}

func TestRoutes_WritesRequireAdmin(t *testing.T) {
	svc, repo, _, _ := newTestService()
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := nurseActor
			if c.Request().Header.Get("X-Test-Admin") != "" {
				a = adminActor
			}
			c.SetRequest(withActor(c.Request(), a))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(e.Group("/api"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/admin/organizations", `{"name":"Jericho"}`))
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "Admin access required") {
		t.Errorf("expected 403 for nurse, got %d %s", rec.Code, rec.Body.String())
	}
	if len(repo.orgs) != 0 {
		t.Fatal("organization created by non-admin")
	}

	req := jsonRequest(http.MethodPost, "/api/admin/organizations", `{"name":"Jericho"}`)
	req.Header.Set("X-Test-Admin", "1")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/organizations", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Jericho"`) {
		t.Errorf("expected nurse to list organizations, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateOrganization_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", `{"name":""}`), adminActor), httptest.NewRecorder())
	he, ok := h.CreateOrganization(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest || he.Message != "Organization name is required" {
		t.Fatalf("expected 400 with name message, got %v", he)
	}
}

func TestHandler_DeleteOrganization(t *testing.T) {
	svc, _, _, _ := newTestService()
	h, e := NewHandler(svc), echo.New()
	org := &Organization{Name: "Jericho"}
	if err := svc.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("create: %v", err)
	}

	w := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), w)
	c.SetParamNames("id")
	c.SetParamValues(org.ID.String())
	if err := h.DeleteOrganization(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(w.Body.String(), "Organization deleted successfully") {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(org.ID.String())
	he, ok := h.DeleteOrganization(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", he)
	}
}

func TestHandler_FileIncident(t *testing.T) {
	svc, _, _, repo := newTestService()
	h, e := NewHandler(svc), echo.New()

	w := httptest.NewRecorder()
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", `{"description":"Fall"}`), nurseActor), w)
	if err := h.FileIncident(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), "Incident report created successfully") {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), repo.reports[0].ID.String()) {
		t.Error("response should carry the new report id")
	}

	c = e.NewContext(withActor(jsonRequest(http.MethodPost, "/", `[]`), nurseActor), httptest.NewRecorder())
	he, ok := h.FileIncident(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", he)
	}
}

func TestHandler_ListIncidents_Unauthenticated(t *testing.T) {
	svc, _, _, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	he, ok := h.ListIncidents(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", he)
	}
}
