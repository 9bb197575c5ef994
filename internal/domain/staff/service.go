package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
)

type Service struct {
	repo        Repository
	tokens      *auth.TokenIssuer
	revocations auth.RevocationStore
	logger      zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenIssuer, revocations auth.RevocationStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger.With().Str("component", "staff").Logger(),
	}
}

// Register creates an account and signs it in. The first account ever
// registered becomes an administrator.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	req.Normalize()
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, apperr.Validation("email", "A valid email is required")
	}
	if req.Password == "" {
		return nil, apperr.Validation("password", "Password is required")
	}
	if req.FullName == "" {
		return nil, apperr.Validation("full_name", "Full name is required")
	}
	if !ValidTitle(req.Title) {
		return nil, apperr.Validationf("title", "Title must be one of %s, %s, %s, %s, %s",
			TitleDSP, TitleCNA, TitleLPN, TitleRN, TitleBSN)
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("email", "Email already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count staff: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	member := &Staff{
		Email:         req.Email,
		PasswordHash:  hash,
		FullName:      req.FullName,
		Title:         req.Title,
		LicenseNumber: req.LicenseNumber,
		IsAdmin:       count == 0,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	if member.IsAdmin {
		s.logger.Info().Str("staff_id", member.ID.String()).Msg("first account registered as admin")
	}
	return s.issue(member)
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	member, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			auth.BurnPasswordCheck(req.Password)
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !auth.CheckPassword(member.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return s.issue(member)
}

func (s *Service) issue(member *Staff) (*TokenResponse, error) {
	token, _, err := s.tokens.Issue(member.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer", Nurse: member}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || s.revocations == nil {
		return nil
	}
	exp := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, exp); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveActor implements auth.ActorResolver.
func (s *Service) ResolveActor(ctx context.Context, id uuid.UUID) (auth.Actor, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return auth.Actor{}, auth.ErrUnknownActor
		}
		return auth.Actor{}, err
	}
	return member.Actor(), nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// SetAdmin promotes or demotes a staff member. Admins cannot demote
// themselves so at least one admin always remains reachable.
func (s *Service) SetAdmin(ctx context.Context, actor auth.Actor, id uuid.UUID, admin bool) (*Staff, error) {
	if !admin && actor.ID == id {
		return nil, apperr.Validation("id", "Cannot demote yourself")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.IsAdmin = admin
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("staff_id", id.String()).
		Str("by", actor.ID.String()).
		Bool("is_admin", admin).
		Msg("admin flag changed")
	return member, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Staff, error) {
	if req.empty() {
		return nil, apperr.Validation("", "No data to update")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, apperr.Validation("full_name", "Full name is required")
		}
		member.FullName = name
	}
	if req.Title != nil {
		title := strings.ToUpper(strings.TrimSpace(*req.Title))
		if !ValidTitle(title) {
			return nil, apperr.Validationf("title", "Unknown title %q", *req.Title)
		}
		member.Title = title
	}
	if req.LicenseNumber != nil {
		member.LicenseNumber = req.LicenseNumber
	}
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// SetAssignments replaces patient, organization and form assignments.
func (s *Service) SetAssignments(ctx context.Context, id uuid.UUID, a Assignments) (*Staff, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.AssignedOrganizations = nonNil(a.AssignedOrganizations)
	member.AllowedForms = nonNil(a.AllowedForms)
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	if a.AssignedPatients != nil {
		if err := s.repo.SetAssignedPatients(ctx, id, a.AssignedPatients); err != nil {
			return nil, err
		}
		member.AssignedPatients = a.AssignedPatients
	}
	return member, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
