package patient

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/pkg/caldate"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "patient").Logger()}
}

// Create adds a patient. Only admins may do this; the creator is assigned
// to the new patient.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Patient, error) {
	if !actor.IsAdmin {
		return nil, apperr.Forbidden("Only admin can add new patients")
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, apperr.Validation("full_name", "Full name is required")
	}
	org := strings.TrimSpace(req.Organization)
	if org == "" {
		org = strings.TrimSpace(req.PermanentInfo.Organization)
	}
	if org == "" {
		return nil, apperr.Validation("organization", "Organization is required")
	}

	info := req.PermanentInfo
	info.Organization = org
	normalizeLists(&info)

	creator := actor.ID
	p := &Patient{
		FullName:       name,
		PermanentInfo:  info,
		CreatedBy:      &creator,
		AssignedNurses: []uuid.UUID{actor.ID},
		IsAssignedToMe: true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a patient for any authenticated staff member, flagged with
// whether the actor is assigned.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsAssignedToMe = actor.CanAccess(p.AssignedNurses)
	return p, nil
}

// Access loads a patient the actor must be assigned to (or be an admin
// for). denied is the message used when access is refused.
func (s *Service) Access(ctx context.Context, actor auth.Actor, id uuid.UUID, denied string) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.AssignedNurses) {
		return nil, apperr.Forbidden(denied)
	}
	p.IsAssignedToMe = true
	return p, nil
}

// Lookup loads a patient without an access check, for annotating records
// the actor already owns.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, onlyAssigned bool, search string, limit, offset int) ([]*Patient, int, error) {
	filter := ListFilter{Search: strings.TrimSpace(search)}
	if onlyAssigned && !actor.IsAdmin {
		id := actor.ID
		filter.AssignedTo = &id
	}
	patients, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range patients {
		p.IsAssignedToMe = actor.CanAccess(p.AssignedNurses)
	}
	return patients, total, nil
}

// Update applies the non-nil fields. Only assigned staff and admins may
// edit; only admins may change the assignment list.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.AssignedNurses) {
		return nil, apperr.Forbidden("You are not assigned to this patient")
	}

	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.PermanentInfo != nil {
		info := *req.PermanentInfo
		if strings.TrimSpace(info.Organization) == "" {
			return nil, apperr.Validation("organization", "Organization is required")
		}
		normalizeLists(&info)
		p.PermanentInfo = info
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if req.AssignedNurses != nil && actor.IsAdmin {
		if err := s.repo.SetAssignedNurses(ctx, id, req.AssignedNurses); err != nil {
			return nil, err
		}
		p.AssignedNurses = req.AssignedNurses
	}
	p.IsAssignedToMe = actor.CanAccess(p.AssignedNurses)
	return p, nil
}

// AssignNurses replaces the patient's assigned staff.
func (s *Service) AssignNurses(ctx context.Context, id uuid.UUID, nurseIDs []uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if nurseIDs == nil {
		nurseIDs = []uuid.UUID{}
	}
	if err := s.repo.SetAssignedNurses(ctx, id, nurseIDs); err != nil {
		return nil, err
	}
	p.AssignedNurses = nurseIDs
	return p, nil
}

// Delete removes a patient with all of its visits, interventions and
// unable-to-contact records.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apperr.Forbidden("Only admin can delete patients")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("by", actor.ID.String()).Msg("patient deleted")
	return nil
}

// RecordVitals stores the vitals of a saved visit as the patient's latest.
// Empty vitals leave the previous values in place.
func (s *Service) RecordVitals(ctx context.Context, id, visitID uuid.UUID, vitals json.RawMessage, date caldate.Date) error {
	if len(vitals) == 0 || string(vitals) == "null" {
		return nil
	}
	return s.repo.UpdateLastVitals(ctx, id, visitID, vitals, date)
}

func normalizeLists(info *PermanentInfo) {
	info.Medications = cleanList(info.Medications)
	info.Allergies = cleanList(info.Allergies)
	info.MedicalDiagnoses = cleanList(info.MedicalDiagnoses)
	info.PsychiatricDiagnoses = cleanList(info.PsychiatricDiagnoses)
}

// cleanList trims entries and drops blanks, never returning nil.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
