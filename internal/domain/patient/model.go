package patient

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/pkg/caldate"
)

// PermanentInfo is the slowly changing part of a patient's profile.
type PermanentInfo struct {
	Organization           string   `json:"organization"`
	Gender                 string   `json:"gender,omitempty"`
	DateOfBirth            string   `json:"date_of_birth,omitempty"`
	LivingSituation        string   `json:"living_situation,omitempty"`
	LivingSituationOther   string   `json:"living_situation_other,omitempty"`
	HomeAddress            string   `json:"home_address,omitempty"`
	HomeStreetAddress      string   `json:"home_street_address,omitempty"`
	HomeCityStateZip       string   `json:"home_city_state_zip,omitempty"`
	HomeAddressType        string   `json:"home_address_type,omitempty"`
	AttendsAdultDayProgram bool     `json:"attends_adult_day_program"`
	AdultDayProgramName    string   `json:"adult_day_program_name,omitempty"`
	AdultDayProgramAddress string   `json:"adult_day_program_address,omitempty"`
	AdultDayStreetAddress  string   `json:"adult_day_street_address,omitempty"`
	AdultDayCityStateZip   string   `json:"adult_day_city_state_zip,omitempty"`
	Race                   string   `json:"race,omitempty"`
	Height                 string   `json:"height,omitempty"`
	CaregiverName          string   `json:"caregiver_name,omitempty"`
	CaregiverPhone         string   `json:"caregiver_phone,omitempty"`
	Medications            []string `json:"medications"`
	Allergies              []string `json:"allergies"`
	MedicalDiagnoses       []string `json:"medical_diagnoses"`
	PsychiatricDiagnoses   []string `json:"psychiatric_diagnoses"`
	VisitFrequency         string   `json:"visit_frequency,omitempty"`
	AdditionalInformation  string   `json:"additional_information,omitempty"`
}

// Address joins the structured home address, falling back to the legacy
// single-line field.
func (p PermanentInfo) Address() string {
	if p.HomeStreetAddress != "" || p.HomeCityStateZip != "" {
		return strings.TrimSpace(strings.Trim(p.HomeStreetAddress+", "+p.HomeCityStateZip, ", "))
	}
	return p.HomeAddress
}

// DayProgram describes the adult day program, or "" when the patient does
// not attend one.
func (p PermanentInfo) DayProgram() string {
	if !p.AttendsAdultDayProgram {
		return ""
	}
	addr := p.AdultDayProgramAddress
	if p.AdultDayStreetAddress != "" || p.AdultDayCityStateZip != "" {
		addr = strings.Trim(p.AdultDayStreetAddress+", "+p.AdultDayCityStateZip, ", ")
	}
	if addr == "" {
		return p.AdultDayProgramName
	}
	return p.AdultDayProgramName + " - " + addr
}

// LastUTC summarizes the most recent unable-to-contact record.
type LastUTC struct {
	ID     uuid.UUID    `json:"id"`
	Date   caldate.Date `json:"date"`
	Reason string       `json:"reason"`
}

type Patient struct {
	ID             uuid.UUID       `json:"id"`
	FullName       string          `json:"full_name"`
	PermanentInfo  PermanentInfo   `json:"permanent_info"`
	CreatedBy      *uuid.UUID      `json:"nurse_id,omitempty"`
	AssignedNurses []uuid.UUID     `json:"assigned_nurses"`
	LastVitals     json.RawMessage `json:"last_vitals"`
	LastVitalsDate caldate.Date    `json:"last_vitals_date"`
	LastVisitID    *uuid.UUID      `json:"last_visit_id"`
	LastVisitDate  caldate.Date    `json:"last_visit_date"`
	LastUTC        *LastUTC        `json:"last_utc"`
	IsAssignedToMe bool            `json:"is_assigned_to_me"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	lastVitalsVisit *uuid.UUID
}

func (p *Patient) Organization() string { return p.PermanentInfo.Organization }

// IsAssigned reports whether staffID is among the assigned nurses.
func (p *Patient) IsAssigned(staffID uuid.UUID) bool {
	for _, id := range p.AssignedNurses {
		if id == staffID {
			return true
		}
	}
	return false
}

// LastHeight is the most recently recorded height: the latest vitals when
// they carry one, the profile otherwise.
func (p *Patient) LastHeight() string {
	if len(p.LastVitals) > 0 {
		var v struct {
			Height string `json:"height"`
		}
		if err := json.Unmarshal(p.LastVitals, &v); err == nil && strings.TrimSpace(v.Height) != "" {
			return v.Height
		}
	}
	return p.PermanentInfo.Height
}

// resolveLastVisit points LastVisitID at the vitals visit when it is at
// least as recent as the last completed visit.
func (p *Patient) resolveLastVisit() {
	if p.lastVitalsVisit == nil || p.LastVitalsDate.IsZero() {
		return
	}
	if p.LastVisitID == nil || p.LastVisitDate.IsZero() || !p.LastVitalsDate.Before(p.LastVisitDate) {
		p.LastVisitID = p.lastVitalsVisit
	}
}

// UTCReason is the short label shown for an unable-to-contact location.
func UTCReason(location, other string) string {
	switch location {
	case "admitted":
		return "Hospitalized"
	case "medical_appointment":
		return "Medical Appt"
	case "overnight_family":
		return "Overnight w/Family"
	case "outing":
		return "Outing"
	case "moved_temporarily":
		return "Temp Move"
	case "moved_permanently":
		return "Perm Move"
	case "deceased":
		return "Deceased"
	case "other":
		if other == "" {
			return "Other"
		}
		return other
	default:
		return "Unknown"
	}
}

type CreateRequest struct {
	FullName      string        `json:"full_name"`
	Organization  string        `json:"organization"`
	PermanentInfo PermanentInfo `json:"permanent_info"`
}

// UpdateRequest carries optional changes. AssignedNurses is applied only
// for admins.
type UpdateRequest struct {
	FullName       *string        `json:"full_name"`
	PermanentInfo  *PermanentInfo `json:"permanent_info"`
	AssignedNurses []uuid.UUID    `json:"assigned_nurses"`
}

// ListFilter narrows a patient listing.
type ListFilter struct {
	AssignedTo *uuid.UUID
	Search     string
}
