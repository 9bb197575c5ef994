package admin

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
)

type Service struct {
	orgs      OrganizationRepository
	programs  DayProgramRepository
	incidents IncidentRepository
	logger    zerolog.Logger
}

func NewService(orgs OrganizationRepository, programs DayProgramRepository, incidents IncidentRepository, logger zerolog.Logger) *Service {
	return &Service{
		orgs:      orgs,
		programs:  programs,
		incidents: incidents,
		logger:    logger.With().Str("component", "admin").Logger(),
	}
}

// -- Organization --

func cleanOrganization(org *Organization) error {
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return apperr.Validation("name", "Organization name is required")
	}
	org.Address = trimPtr(org.Address)
	org.ContactPerson = trimPtr(org.ContactPerson)
	org.ContactPhone = trimPtr(org.ContactPhone)
	return nil
}

func (s *Service) CreateOrganization(ctx context.Context, org *Organization) error {
	if err := cleanOrganization(org); err != nil {
		return err
	}
	return s.orgs.Create(ctx, org)
}

// UpdateOrganization replaces the editable fields; the creation time is kept.
func (s *Service) UpdateOrganization(ctx context.Context, id uuid.UUID, org *Organization) (*Organization, error) {
	existing, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cleanOrganization(org); err != nil {
		return nil, err
	}
	org.ID = existing.ID
	org.CreatedAt = existing.CreatedAt
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	return s.orgs.Delete(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]*Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if orgs == nil && err == nil {
		orgs = []*Organization{}
	}
	return orgs, err
}

// -- Day Program --

func cleanDayProgram(p *DayProgram) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperr.Validation("name", "Day program name is required")
	}
	p.Address = trimPtr(p.Address)
	p.OfficePhone = trimPtr(p.OfficePhone)
	p.ContactPerson = trimPtr(p.ContactPerson)
	return nil
}

func (s *Service) CreateDayProgram(ctx context.Context, p *DayProgram) error {
	if err := cleanDayProgram(p); err != nil {
		return err
	}
	return s.programs.Create(ctx, p)
}

func (s *Service) UpdateDayProgram(ctx context.Context, id uuid.UUID, p *DayProgram) (*DayProgram, error) {
	existing, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cleanDayProgram(p); err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	if err := s.programs.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteDayProgram(ctx context.Context, id uuid.UUID) error {
	return s.programs.Delete(ctx, id)
}

func (s *Service) ListDayPrograms(ctx context.Context) ([]*DayProgram, error) {
	programs, err := s.programs.List(ctx)
	if programs == nil && err == nil {
		programs = []*DayProgram{}
	}
	return programs, err
}

// -- Incident Reports --

// FileIncident stores doc, which must be a JSON object, as a report by the
// actor. Keys the server owns are dropped from the document.
func (s *Service) FileIncident(ctx context.Context, actor auth.Actor, doc json.RawMessage) (*IncidentReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil || fields == nil {
		return nil, apperr.Validation("body", "Incident report must be a JSON object")
	}
	for _, k := range serverOwned {
		delete(fields, k)
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	rep := &IncidentReport{NurseID: actor.ID, Fields: clean}
	if err := s.incidents.Create(ctx, rep); err != nil {
		return nil, err
	}
	s.logger.Info().Str("report_id", rep.ID.String()).Str("by", actor.ID.String()).Msg("incident report filed")
	return rep, nil
}

// Incidents lists every report for an admin and the actor's own otherwise.
func (s *Service) Incidents(ctx context.Context, actor auth.Actor) ([]*IncidentReport, error) {
	var nurseID *uuid.UUID
	if !actor.IsAdmin {
		id := actor.ID
		nurseID = &id
	}
	reps, err := s.incidents.List(ctx, nurseID)
	if reps == nil && err == nil {
		reps = []*IncidentReport{}
	}
	return reps, err
}
