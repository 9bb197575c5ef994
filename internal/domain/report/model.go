// Package report projects visits into the monthly summary, its printable
// and spreadsheet forms, and single-visit print documents.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/pkg/caldate"
)

// Request selects the visits of one calendar month. An empty VisitType
// covers every type.
type Request struct {
	Year         int
	Month        time.Month
	VisitType    visit.Type
	PatientID    *uuid.UUID
	Organization string
}

func (r Request) Validate() error {
	if r.Month < time.January || r.Month > time.December {
		return apperr.Validation("month", "Month must be between 1 and 12")
	}
	if r.Year < 1900 || r.Year > 9999 {
		return apperr.Validation("year", "Year is out of range")
	}
	if r.VisitType != "" && !r.VisitType.Valid() {
		return apperr.Validationf("visit_type", "Unknown visit type %q", r.VisitType)
	}
	return nil
}

// Summary counts the visits in a monthly report.
type Summary struct {
	Period         string         `json:"period"`
	StartDate      caldate.Date   `json:"start_date"`
	EndDate        caldate.Date   `json:"end_date"`
	TotalVisits    int            `json:"total_visits"`
	NurseVisits    int            `json:"nurse_visits"`
	VitalsOnly     int            `json:"vitals_only"`
	DailyNotes     int            `json:"daily_notes"`
	UniquePatients int            `json:"unique_patients"`
	ByOrganization map[string]int `json:"by_organization"`
}

// Entry is a visit annotated for display.
type Entry struct {
	*visit.Record
	PatientName  string
	Organization string
}

// MarshalJSON adds patient_name and organization to the visit's own shape.
func (e Entry) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("annotate visit: %w", err)
	}
	name, _ := json.Marshal(e.PatientName)
	org, _ := json.Marshal(e.Organization)
	doc["patient_name"] = name
	doc["organization"] = org
	return json.Marshal(doc)
}

// ByType partitions a report's visits, each bucket oldest first.
type ByType struct {
	NurseVisit []*Entry `json:"nurse_visit"`
	VitalsOnly []*Entry `json:"vitals_only"`
	DailyNote  []*Entry `json:"daily_note"`
}

// Monthly is the aggregate returned for a Request.
type Monthly struct {
	Summary      Summary  `json:"summary"`
	Visits       []*Entry `json:"visits"`
	VisitsByType ByType   `json:"visits_by_type"`
}

// Heading is what a printed report says about its selection.
type Heading struct {
	Type        visit.Type
	PatientName string
	Year        int
	Month       time.Month
}

// Title names the report for its visit type.
func (h Heading) Title() string {
	switch h.Type {
	case visit.TypeVitalsOnly:
		return "Vital Signs Report"
	case visit.TypeDailyNote:
		return "Daily Notes Report"
	}
	return "Nurse Visit Report"
}

func (h Heading) Patient() string {
	if h.PatientName == "" {
		return "All Patients"
	}
	return h.PatientName
}

func (h Heading) Period() string {
	return fmt.Sprintf("%s %d", h.Month, h.Year)
}

// DailyNotes is one patient's daily notes for a month, oldest first.
type DailyNotes struct {
	PatientID   uuid.UUID    `json:"patient_id"`
	PatientName string       `json:"patient_name"`
	Period      string       `json:"period"`
	StartDate   caldate.Date `json:"start_date"`
	EndDate     caldate.Date `json:"end_date"`
	Notes       []*Entry     `json:"notes"`
}
