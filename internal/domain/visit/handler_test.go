package visit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
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

func TestHandler_StartSession(t *testing.T) {
	svc, _, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", `{"visit_type":"vitals_only"}`), nurseActor), rec)
	c.SetParamNames("id")
	c.SetParamValues(pid.String())

	if err := h.StartSession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Record             map[string]any `json:"record"`
		Draft              map[string]any `json:"draft"`
		LastVisitAvailable bool           `json:"last_visit_available"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Record["visit_type"] != "vitals_only" || got.Record["screening_completed_by"] != "Jane Doe, RN" {
		t.Errorf("unexpected record %v", got.Record)
	}
	if got.Draft != nil || got.LastVisitAvailable {
		t.Errorf("fresh patient should have no draft or last visit, got %+v", got)
	}
}

func TestHandler_StartSession_Intervention(t *testing.T) {
	svc, _, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", `{"visit_type":"patient_intervention"}`), nurseActor), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(pid.String())

	he, ok := h.StartSession(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", he)
	}
}

func TestHandler_Create(t *testing.T) {
	svc, repo, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	body := `{"visit_type":"daily_note","visit_date":"2024-03-05","daily_note_content":"Calm day"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", body), nurseActor), rec)
	c.SetParamNames("id")
	c.SetParamValues(pid.String())

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"daily_note_content":"Calm day -JD"`) {
		t.Errorf("expected signed note, got %s", rec.Body.String())
	}
	if len(repo.visits) != 1 {
		t.Errorf("expected 1 stored visit, got %d", len(repo.visits))
	}
}

func TestHandler_Create_ValidationError(t *testing.T) {
	svc, repo, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	body := `{"visit_type":"vitals_only","visit_date":"2024-03-05","overall_health_status":"Fine"}`
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", body), nurseActor), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(pid.String())

	he, ok := h.Create(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", he)
	}
	if len(repo.visits) != 0 {
		t.Error("rejected visit must not be stored")
	}
}

func TestHandler_Get_BadID(t *testing.T) {
	svc, _, _, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	c := e.NewContext(withActor(httptest.NewRequest(http.MethodGet, "/", nil), nurseActor), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	he, ok := h.Get(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", he)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	c := e.NewContext(withActor(httptest.NewRequest(http.MethodGet, "/", nil), nurseActor), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	he, ok := h.Get(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", he)
	}
}

func TestHandler_List(t *testing.T) {
	svc, _, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	for _, d := range []string{"2024-03-01", "2024-03-02"} {
		r, _ := New(TypeDailyNote)
		r.Date = mustDate(d)
		r.Daily.DailyNoteContent = "note"
		submit(t, svc, nurseActor, pid, r)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(withActor(httptest.NewRequest(http.MethodGet, "/?visit_type=daily_note&limit=1", nil), nurseActor), rec)
	c.SetParamNames("id")
	c.SetParamValues(pid.String())

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page struct {
		Data    []map[string]any `json:"data"`
		Total   int              `json:"total"`
		HasMore bool             `json:"has_more"`
	}
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Total != 2 || len(page.Data) != 1 || !page.HasMore {
		t.Errorf("unexpected page %+v", page)
	}
	if page.Data[0]["visit_date"] != "2024-03-02" {
		t.Errorf("expected newest first, got %v", page.Data[0]["visit_date"])
	}
}

func TestHandler_PullFromLast(t *testing.T) {
	svc, _, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	prev, _ := New(TypeNurseVisit)
	prev.Date = mustDate("2024-03-01")
	prev.Nurse.PhysicalAssessment.MobilityLevel = "Ambulatory"
	submit(t, svc, nurseActor, pid, prev)

	body := `{"patient_id":"` + pid.String() + `","section":"physical_assessment","field":"mobility_level","record":{"visit_type":"nurse_visit"}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", body), nurseActor), rec)

	if err := h.PullFromLast(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Record map[string]any `json:"record"`
		Pulled bool           `json:"pulled"`
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	pa, _ := got.Record["physical_assessment"].(map[string]any)
	if !got.Pulled || pa["mobility_level"] != "Ambulatory" || pa["mobility_level_from_last"] != true {
		t.Errorf("unexpected pull result %s", rec.Body.String())
	}
}

func TestHandler_PullFromLast_NoPreviousData(t *testing.T) {
	svc, _, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	body := `{"patient_id":"` + pid.String() + `","section":"physical_assessment","field":"speech_level","record":{"visit_type":"nurse_visit"}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", body), nurseActor), rec)

	if err := h.PullFromLast(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"pulled":false`) || !strings.Contains(rec.Body.String(), "No previous visit found") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_PullFromLast_BadField(t *testing.T) {
	svc, _, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	body := `{"patient_id":"` + pid.String() + `","section":"vital_signs","field":"weight","record":{"visit_type":"nurse_visit"}}`
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", body), nurseActor), httptest.NewRecorder())

	he, ok := h.PullFromLast(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", he)
	}
}

func TestHandler_CheckVitals(t *testing.T) {
	svc, _, _, _ := newTestService()
	h, e := NewHandler(svc), echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(withActor(jsonRequest(http.MethodPost, "/", `{"blood_pressure_systolic":"150","blood_pressure_diastolic":"85"}`), nurseActor), rec)

	if err := h.CheckVitals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got CheckResult
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Abnormal || !got.PromptRepeat || !got.VitalSigns.BPAbnormal {
		t.Errorf("expected abnormal reading, got %+v", got)
	}
}

func TestHandler_Delete(t *testing.T) {
	svc, repo, _, pid := newTestService()
	h, e := NewHandler(svc), echo.New()

	r, _ := New(TypeDailyNote)
	r.Date = mustDate("2024-03-01")
	r.Daily.DailyNoteContent = "note"
	saved := submit(t, svc, nurseActor, pid, r)

	c := e.NewContext(withActor(httptest.NewRequest(http.MethodDelete, "/", nil), otherNurse), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(saved.ID.String())
	if he, ok := h.Delete(c).(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another nurse, got %v", he)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(withActor(httptest.NewRequest(http.MethodDelete, "/", nil), nurseActor), rec)
	c.SetParamNames("id")
	c.SetParamValues(saved.ID.String())
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Visit deleted") || len(repo.visits) != 0 {
		t.Errorf("expected deletion, got %s", rec.Body.String())
	}
}
