package intervention

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/internal/platform/metrics"
)

// Patients is the part of the patient service interventions depend on.
type Patients interface {
	Access(ctx context.Context, actor auth.Actor, id uuid.UUID, denied string) (*patient.Patient, error)
	Lookup(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	patients Patients
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

func NewService(repo Repository, patients Patients, m *metrics.Collector, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		metrics:  m,
		logger:   logger.With().Str("component", "intervention").Logger(),
	}
}

// Create validates and stores a new intervention. A record that fails
// validation is never handed to the repository.
func (s *Service) Create(ctx context.Context, actor auth.Actor, rec *Record) (*Record, error) {
	p, err := s.patients.Access(ctx, actor, rec.PatientID, "Not authorized to create interventions for this patient")
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.Nil
	rec.NurseID = actor.ID
	if err := s.check(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.metrics.InterventionSaved(string(rec.Type))
	annotate(rec, p)
	return rec, nil
}

func (s *Service) check(rec *Record) error {
	Normalize(rec)
	if err := Validate(rec); err != nil {
		s.metrics.ValidationRejected("intervention")
		return err
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, actor auth.Actor, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	p, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's interventions")
	if err != nil {
		return nil, 0, err
	}
	recs, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range recs {
		annotate(rec, p)
	}
	if recs == nil {
		recs = []*Record{}
	}
	return recs, total, nil
}

// owned loads an intervention written by the actor. Anyone else's record is
// reported as not found.
func (s *Service) owned(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.NurseID != actor.ID {
		return nil, apperr.NotFound("Intervention")
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Record, error) {
	rec, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.lookup(ctx, rec)
	return rec, nil
}

// Update replaces an intervention's content. Identity and authorship are
// kept from the stored record.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, rec *Record) (*Record, error) {
	existing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	rec.ID = existing.ID
	rec.PatientID = existing.PatientID
	rec.NurseID = existing.NurseID
	rec.CreatedAt = existing.CreatedAt
	if err := s.check(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.metrics.InterventionSaved(string(rec.Type))
	s.logger.Info().Str("intervention_id", id.String()).Str("by", actor.ID.String()).Msg("intervention updated")
	s.lookup(ctx, rec)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// lookup annotates rec with its patient. A missing patient leaves the
// record readable as "Unknown".
func (s *Service) lookup(ctx context.Context, rec *Record) {
	p, err := s.patients.Lookup(ctx, rec.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", rec.PatientID.String()).Msg("patient lookup failed")
		rec.PatientName = "Unknown"
		return
	}
	annotate(rec, p)
}

func annotate(rec *Record, p *patient.Patient) {
	rec.PatientName = p.FullName
	rec.PatientDOB = p.PermanentInfo.DateOfBirth
}
