package intervention

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/pkg/caldate"
)

// -- Mock Repository --

type mockRepo struct {
	records map[uuid.UUID]*Record
	creates int
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) Create(_ context.Context, r *Record) error {
	m.creates++
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFound("Intervention")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, r *Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return apperr.NotFound("Intervention")
	}
	r.UpdatedAt = time.Now()
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return apperr.NotFound("Intervention")
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var out []*Record
	for _, r := range m.records {
		if r.PatientID == patientID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

// -- Fake patients --

type fakePatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (f *fakePatients) Lookup(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperr.NotFound("Patient")
	}
	return p, nil
}

func (f *fakePatients) Access(ctx context.Context, actor auth.Actor, id uuid.UUID, denied string) (*patient.Patient, error) {
	p, err := f.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.AssignedNurses) {
		return nil, apperr.Forbidden(denied)
	}
	return p, nil
}

var (
	nurseActor = auth.Actor{ID: uuid.New(), FullName: "Jane Doe", Title: "RN"}
	otherNurse = auth.Actor{ID: uuid.New(), FullName: "Omar Other", Title: "LPN"}
	outsider   = auth.Actor{ID: uuid.New(), FullName: "Una Assigned", Title: "CNA"}
)

func newTestService() (*Service, *mockRepo, *fakePatients, uuid.UUID) {
	repo := newMockRepo()
	pid := uuid.New()
	pats := &fakePatients{patients: map[uuid.UUID]*patient.Patient{
		pid: {
			ID:             pid,
			FullName:       "Pat Patient",
			PermanentInfo:  patient.PermanentInfo{Organization: "Jericho", DateOfBirth: "1950-02-01"},
			AssignedNurses: []uuid.UUID{nurseActor.ID, otherNurse.ID},
		},
	}}
	return NewService(repo, pats, nil, zerolog.Nop()), repo, pats, pid
}

func TestCreate_InjectionWithoutAllergyCheckIsNotSaved(t *testing.T) {
	svc, repo, _, pid := newTestService()
	rec := validInjection()
	rec.PatientID = pid
	rec.Injection.VerifiedNoAllergicReaction = false

	_, err := svc.Create(context.Background(), nurseActor, rec)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Please verify patient has no allergic reaction to this injection" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if repo.creates != 0 || len(repo.records) != 0 {
		t.Error("invalid intervention reached the repository")
	}
}

func TestCreate_AnnotatesAndNormalizes(t *testing.T) {
	svc, repo, _, pid := newTestService()
	rec := validInjection()
	rec.PatientID = pid
	rec.Test = &TestDetails{TestType: "covid"}

	saved, err := svc.Create(context.Background(), nurseActor, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.NurseID != nurseActor.ID || saved.PatientName != "Pat Patient" || saved.PatientDOB != "1950-02-01" {
		t.Errorf("unexpected record %+v", saved)
	}
	if repo.records[saved.ID].Test != nil {
		t.Error("test details stored on an injection")
	}
}

func TestCreate_Forbidden(t *testing.T) {
	svc, _, _, pid := newTestService()
	rec := validInjection()
	rec.PatientID = pid

	_, err := svc.Create(context.Background(), outsider, rec)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "Not authorized to create interventions for this patient" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestListByPatient_NewestFirst(t *testing.T) {
	svc, _, _, pid := newTestService()
	for _, d := range []string{"2024-03-01", "2024-03-09", "2024-03-04"} {
		rec := validInjection()
		rec.PatientID = pid
		rec.Date = caldate.MustParse(d)
		if _, err := svc.Create(context.Background(), nurseActor, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recs, total, err := svc.ListByPatient(context.Background(), otherNurse, pid, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || recs[0].Date.US() != "03/09/2024" {
		t.Errorf("expected newest first, got %d records starting %s", total, recs[0].Date.US())
	}
	for _, r := range recs {
		if r.PatientName != "Pat Patient" {
			t.Errorf("missing patient annotation on %s", r.ID)
		}
	}

	if _, _, err := svc.ListByPatient(context.Background(), outsider, pid, 50, 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestAuthorOnly(t *testing.T) {
	svc, repo, _, pid := newTestService()
	rec := validInjection()
	rec.PatientID = pid
	saved, err := svc.Create(context.Background(), nurseActor, rec)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Get(ctx, otherNurse, saved.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get by another nurse: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, otherNurse, saved.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete by another nurse: expected not found, got %v", err)
	}

	edit := validInjection()
	edit.Notes = "edited"
	if _, err := svc.Update(ctx, otherNurse, saved.ID, edit); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update by another nurse: expected not found, got %v", err)
	}

	edit.PatientID = uuid.New()
	updated, err := svc.Update(ctx, nurseActor, saved.ID, edit)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PatientID != pid || updated.Notes != "edited" || updated.PatientName != "Pat Patient" {
		t.Errorf("unexpected update %+v", updated)
	}

	if err := svc.Delete(ctx, nurseActor, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.records) != 0 {
		t.Error("expected record deleted")
	}
}

func TestGet_UnknownPatient(t *testing.T) {
	svc, _, pats, pid := newTestService()
	rec := validInjection()
	rec.PatientID = pid
	saved, _ := svc.Create(context.Background(), nurseActor, rec)

	delete(pats.patients, pid)
	got, err := svc.Get(context.Background(), nurseActor, saved.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PatientName != "Unknown" {
		t.Errorf("expected Unknown patient, got %q", got.PatientName)
	}
}
