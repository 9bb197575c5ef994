package visit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/internal/platform/metrics"
	"github.com/poshable/visitlog/pkg/caldate"
)

// Patients is the part of the patient service visits depend on.
type Patients interface {
	Access(ctx context.Context, actor auth.Actor, id uuid.UUID, denied string) (*patient.Patient, error)
	RecordVitals(ctx context.Context, id, visitID uuid.UUID, vitals json.RawMessage, date caldate.Date) error
}

type Service struct {
	repo       Repository
	patients   Patients
	thresholds BPThresholds
	loc        *time.Location
	metrics    *metrics.Collector
	logger     zerolog.Logger
}

// NewService wires the visit service. loc decides what "today" is for new
// records; m may be nil.
func NewService(repo Repository, patients Patients, thresholds BPThresholds, loc *time.Location, m *metrics.Collector, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		patients:   patients,
		thresholds: thresholds,
		loc:        loc,
		metrics:    m,
		logger:     logger.With().Str("component", "visit").Logger(),
	}
}

func (s *Service) Thresholds() BPThresholds { return s.thresholds }

// StartSession prepares an entry form for one patient and visit type.
func (s *Service) StartSession(ctx context.Context, actor auth.Actor, patientID uuid.UUID, req SessionRequest) (*Session, error) {
	if req.Type == typeIntervention {
		return nil, ErrUseInterventionFlow
	}
	if req.Type == "" {
		req.Type = TypeNurseVisit
	}
	if !req.Type.Valid() {
		return nil, apperr.Validationf("visit_type", "Invalid visit type %q", req.Type)
	}
	p, err := s.patients.Access(ctx, actor, patientID, "Not authorized to create visits for this patient")
	if err != nil {
		return nil, err
	}

	session := &Session{}
	if _, err := s.repo.LastCompleted(ctx, patientID, TypeNurseVisit, uuid.Nil); err == nil {
		session.LastVisitAvailable = true
	} else if !errors.Is(err, ErrNoPreviousVisit) {
		// Carry-forward degrades to "no previous visit" rather than
		// blocking the form.
		s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("last visit lookup failed")
	}

	if req.ResumeDraftID != nil {
		draft, err := s.repo.GetByID(ctx, *req.ResumeDraftID)
		if err != nil {
			return nil, err
		}
		// Drafts belong to their author; another nurse starts fresh.
		if draft.NurseID != actor.ID {
			return nil, apperr.NotFound("Draft")
		}
		if draft.PatientID != patientID || draft.Type != req.Type || draft.Status != StatusDraft {
			return nil, apperr.Validation("resume_draft_id", "Draft does not match this patient and visit type")
		}
		session.Record = draft
		session.Draft = draft
		session.Resumed = true
		return session, nil
	}

	drafts, _, err := s.repo.ListByPatient(ctx, patientID, ListFilter{Type: req.Type, Status: StatusDraft, NurseID: &actor.ID}, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(drafts) > 0 {
		session.Draft = drafts[0]
	}

	rec, err := New(req.Type)
	if err != nil {
		return nil, err
	}
	rec.PatientID = patientID
	rec.Date = caldate.Today(s.loc)
	rec.Organization = p.Organization()
	rec.ScreeningCompletedBy = actor.Attestation()
	PrefillHeight(rec, p.LastHeight())
	session.Record = rec
	return session, nil
}

// Drafts lists the actor's drafts for the patient of one visit type, newest
// first.
func (s *Service) Drafts(ctx context.Context, actor auth.Actor, patientID uuid.UUID, t Type) ([]*Record, error) {
	if _, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's visits"); err != nil {
		return nil, err
	}
	drafts, _, err := s.repo.ListByPatient(ctx, patientID, ListFilter{Type: t, Status: StatusDraft, NurseID: &actor.ID}, 100, 0)
	if err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []*Record{}
	}
	return drafts, nil
}

// Submit saves rec for patientID. A record carrying the id of an existing
// visit (a resumed draft or an edit) is updated in place; one without an id
// is created.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, patientID uuid.UUID, rec *Record) (*Record, error) {
	if rec.Type == typeIntervention {
		return nil, ErrUseInterventionFlow
	}
	if rec.ID != uuid.Nil {
		return s.Update(ctx, actor, rec.ID, rec)
	}
	p, err := s.patients.Access(ctx, actor, patientID, "Not authorized to create visits for this patient")
	if err != nil {
		return nil, err
	}

	rec.PatientID = patientID
	rec.NurseID = actor.ID
	if rec.Organization == "" {
		rec.Organization = p.Organization()
	}
	if err := s.prepare(actor, rec); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.saved(ctx, rec)
	return rec, nil
}

// Update applies an edit to a visit the actor wrote. Type and organization
// are fixed at creation; a missing date keeps the stored one.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, rec *Record) (*Record, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.NurseID != actor.ID {
		return nil, apperr.NotFound("Visit")
	}
	if rec.Type != existing.Type {
		return nil, ErrTypeChange
	}
	if rec.Status == "" {
		rec.Status = existing.Status
	}
	if err := Transition(existing.Status, rec.Status); err != nil {
		return nil, err
	}

	rec.ID = existing.ID
	rec.PatientID = existing.PatientID
	rec.NurseID = existing.NurseID
	rec.Organization = existing.Organization
	rec.CreatedAt = existing.CreatedAt
	if rec.Date.IsZero() {
		rec.Date = existing.Date
	}
	if rec.body() == nil {
		rec.resetBody()
	}
	if v := existing.VitalSigns(); v != nil && v.BPAbnormal {
		rec.VitalSigns().BPAbnormal = true
	}
	if err := s.prepare(actor, rec); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.saved(ctx, rec)
	return rec, nil
}

// prepare fills defaults, applies the save-time derivations and validates.
func (s *Service) prepare(actor auth.Actor, rec *Record) error {
	if rec.Status == "" {
		rec.Status = StatusCompleted
	}
	if rec.Date.IsZero() {
		rec.Date = caldate.Today(s.loc)
	}
	if rec.ScreeningCompletedBy == "" {
		rec.ScreeningCompletedBy = actor.Attestation()
	}
	if rec.body() == nil {
		rec.resetBody()
	}
	if v := rec.VitalSigns(); v != nil {
		if _, raised := v.ObserveBloodPressure(s.thresholds); raised {
			s.metrics.BPFlagRaised()
		}
	}
	if rec.Daily != nil {
		rec.Daily.DailyNoteContent = SignDailyNote(rec.Daily.DailyNoteContent, actor.FullName)
	}
	normalize(rec)
	if err := Validate(rec); err != nil {
		s.metrics.ValidationRejected("visit")
		return err
	}
	return nil
}

// saved records metrics and pushes the vitals to the patient. A failed
// vitals update does not fail the save.
func (s *Service) saved(ctx context.Context, rec *Record) {
	s.metrics.VisitSaved(string(rec.Type), string(rec.Status))
	v := rec.VitalSigns()
	if v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = s.patients.RecordVitals(ctx, rec.PatientID, rec.ID, raw, rec.Date)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("visit_id", rec.ID.String()).Msg("update patient last vitals")
	}
}

// Get returns a visit to an admin or to staff assigned to its patient.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.Access(ctx, actor, rec.PatientID, "Not authorized to view this visit"); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor, patientID uuid.UUID, filter ListFilter, limit, offset int) ([]*Record, int, error) {
	if _, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's visits"); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, filter, limit, offset)
}

// Last returns the patient's most recent completed visit of any type.
func (s *Service) Last(ctx context.Context, actor auth.Actor, patientID uuid.UUID) (*Record, error) {
	if _, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's visits"); err != nil {
		return nil, err
	}
	return s.repo.LastCompleted(ctx, patientID, "", uuid.Nil)
}

// Delete removes a visit. Only its author may delete it.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.NurseID != actor.ID {
		return apperr.NotFound("Visit")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("visit_id", id.String()).Str("by", actor.ID.String()).Msg("visit deleted")
	return nil
}

// PullFromLast copies one carry-forward field into rec from the patient's
// last completed nurse visit other than rec itself.
func (s *Service) PullFromLast(ctx context.Context, actor auth.Actor, patientID uuid.UUID, rec *Record, field CarryField) (*Record, error) {
	if _, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's visits"); err != nil {
		return nil, err
	}
	last, err := s.repo.LastCompleted(ctx, patientID, TypeNurseVisit, rec.ID)
	if err != nil {
		if !errors.Is(err, ErrNoPreviousVisit) {
			s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("last visit lookup failed")
		}
		last = nil
	}
	out := rec.Clone()
	if err := PullFromLast(out, last, field); err != nil {
		return rec, err
	}
	return out, nil
}

// CheckVitals evaluates a blood pressure entry against the thresholds.
func (s *Service) CheckVitals(v VitalSigns) CheckResult {
	abnormal, raised := v.ObserveBloodPressure(s.thresholds)
	if raised {
		s.metrics.BPFlagRaised()
	}
	return CheckResult{VitalSigns: v, Abnormal: abnormal, PromptRepeat: abnormal}
}

// Range returns visits for reports, oldest first.
func (s *Service) Range(ctx context.Context, filter RangeFilter) ([]*Record, error) {
	return s.repo.ListRange(ctx, filter)
}
