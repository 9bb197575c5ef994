package staff

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/internal/platform/auth"
)

// Titles a staff member may hold.
const (
	TitleDSP = "DSP"
	TitleCNA = "CNA"
	TitleLPN = "LPN"
	TitleRN  = "RN"
	TitleBSN = "BSN"
)

var validTitles = map[string]bool{
	TitleDSP: true, TitleCNA: true, TitleLPN: true, TitleRN: true, TitleBSN: true,
}

func ValidTitle(t string) bool { return validTitles[t] }

// Staff is a nurse or caregiver account.
type Staff struct {
	ID                    uuid.UUID   `json:"id"`
	Email                 string      `json:"email"`
	PasswordHash          string      `json:"-"`
	FullName              string      `json:"full_name"`
	Title                 string      `json:"title"`
	LicenseNumber         *string     `json:"license_number,omitempty"`
	IsAdmin               bool        `json:"is_admin"`
	AssignedPatients      []uuid.UUID `json:"assigned_patients"`
	AssignedOrganizations []string    `json:"assigned_organizations"`
	AllowedForms          []string    `json:"allowed_forms"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// Actor is the request identity derived from the account.
func (s *Staff) Actor() auth.Actor {
	return auth.Actor{
		ID:       s.ID,
		Email:    s.Email,
		FullName: s.FullName,
		Title:    s.Title,
		IsAdmin:  s.IsAdmin,
	}
}

// HasOrganization reports whether org is one of the staff member's
// assigned organizations.
func (s *Staff) HasOrganization(org string) bool {
	if org == "" {
		return false
	}
	for _, o := range s.AssignedOrganizations {
		if o == org {
			return true
		}
	}
	return false
}

type RegisterRequest struct {
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	FullName      string  `json:"full_name"`
	Title         string  `json:"title"`
	LicenseNumber *string `json:"license_number"`
}

// Normalize trims the request and lower-cases the email.
func (r *RegisterRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Title = strings.ToUpper(strings.TrimSpace(r.Title))
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Nurse       *Staff `json:"nurse"`
}

// UpdateRequest carries the profile fields an admin may change. Nil fields
// are left alone.
type UpdateRequest struct {
	FullName      *string `json:"full_name"`
	Title         *string `json:"title"`
	LicenseNumber *string `json:"license_number"`
}

func (u UpdateRequest) empty() bool {
	return u.FullName == nil && u.Title == nil && u.LicenseNumber == nil
}

// Assignments replaces a staff member's patient, organization and form
// assignments.
type Assignments struct {
	AssignedPatients      []uuid.UUID `json:"assigned_patients"`
	AssignedOrganizations []string    `json:"assigned_organizations"`
	AllowedForms          []string    `json:"allowed_forms"`
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
