package contact

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/staff"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/internal/platform/metrics"
)

type Patients interface {
	Access(ctx context.Context, actor auth.Actor, id uuid.UUID, denied string) (*patient.Patient, error)
	Lookup(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// StaffReader resolves the organizations a staff member covers.
type StaffReader interface {
	Get(ctx context.Context, id uuid.UUID) (*staff.Staff, error)
}

type Service struct {
	repo     Repository
	patients Patients
	staff    StaffReader
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

func NewService(repo Repository, patients Patients, staff StaffReader, m *metrics.Collector, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		staff:    staff,
		metrics:  m,
		logger:   logger.With().Str("component", "contact").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, rec *Record) (*Record, error) {
	p, err := s.patients.Access(ctx, actor, rec.PatientID, "Not authorized to create records for this patient")
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.Nil
	rec.NurseID = actor.ID
	Normalize(rec)
	if err := Validate(rec); err != nil {
		s.metrics.ValidationRejected("unable_to_contact")
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	rec.PatientName = p.FullName
	s.logger.Info().
		Str("record_id", rec.ID.String()).
		Str("patient_id", rec.PatientID.String()).
		Str("individual_location", rec.IndividualLocation).
		Msg("unable-to-contact recorded")
	return rec, nil
}

func (s *Service) ListByPatient(ctx context.Context, actor auth.Actor, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	p, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's records")
	if err != nil {
		return nil, 0, err
	}
	recs, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range recs {
		rec.PatientName = p.FullName
	}
	if recs == nil {
		recs = []*Record{}
	}
	return recs, total, nil
}

// Get returns a record to an admin, to staff assigned to the patient, or to
// staff covering the patient's organization.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.patients.Lookup(ctx, rec.PatientID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.AssignedNurses) && !s.coversOrganization(ctx, actor, p.Organization()) {
		return nil, apperr.Forbidden("Not authorized to view this record")
	}
	rec.PatientName = p.FullName
	return rec, nil
}

func (s *Service) coversOrganization(ctx context.Context, actor auth.Actor, org string) bool {
	member, err := s.staff.Get(ctx, actor.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("staff_id", actor.ID.String()).Msg("staff lookup failed")
		return false
	}
	return member.HasOrganization(org)
}

// Delete removes a record. Only its author may delete it.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.NurseID != actor.ID {
		return apperr.NotFound("Record")
	}
	return s.repo.Delete(ctx, id)
}
