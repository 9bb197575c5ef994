package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/pkg/caldate"
)

const (
	unknownPatient   = "Unknown"
	unspecifiedOrg   = "Unspecified"
	defaultOrgHeader = "POSH-Able Living"
)

// Period returns the first and last day a monthly report covers. The
// current month ends at today.
func Period(year int, month time.Month, today caldate.Date) (start, end caldate.Date) {
	start, end = caldate.MonthBounds(year, month)
	if today.Year == year && today.Month == month {
		end = today
	}
	return start, end
}

// Aggregate builds the monthly report from visits. patients resolves display
// names; a visit whose patient is missing is shown as Unknown.
func Aggregate(visits []*visit.Record, patients map[uuid.UUID]*patient.Patient, start, end caldate.Date) *Monthly {
	sorted := make([]*visit.Record, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Date.Compare(sorted[j].Date); c != 0 {
			return c < 0
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	rep := &Monthly{
		Summary: Summary{
			Period:         fmt.Sprintf("%d-%02d", start.Year, int(start.Month)),
			StartDate:      start,
			EndDate:        end,
			ByOrganization: map[string]int{},
		},
		Visits: make([]*Entry, 0, len(sorted)),
		VisitsByType: ByType{
			NurseVisit: []*Entry{},
			VitalsOnly: []*Entry{},
			DailyNote:  []*Entry{},
		},
	}

	seen := make(map[uuid.UUID]struct{})
	for _, rec := range sorted {
		e := annotate(rec, patients[rec.PatientID])
		rep.Visits = append(rep.Visits, e)
		seen[rec.PatientID] = struct{}{}

		switch rec.Type {
		case visit.TypeVitalsOnly:
			rep.VisitsByType.VitalsOnly = append(rep.VisitsByType.VitalsOnly, e)
		case visit.TypeDailyNote:
			rep.VisitsByType.DailyNote = append(rep.VisitsByType.DailyNote, e)
		default:
			rep.VisitsByType.NurseVisit = append(rep.VisitsByType.NurseVisit, e)
		}

		// Counted by the organization recorded on the visit only.
		org := rec.Organization
		if org == "" {
			org = unspecifiedOrg
		}
		rep.Summary.ByOrganization[org]++
	}

	rep.Summary.TotalVisits = len(rep.Visits)
	rep.Summary.UniquePatients = len(seen)
	rep.Summary.NurseVisits = len(rep.VisitsByType.NurseVisit)
	rep.Summary.VitalsOnly = len(rep.VisitsByType.VitalsOnly)
	rep.Summary.DailyNotes = len(rep.VisitsByType.DailyNote)
	return rep
}

// annotate resolves the display name and organization of rec. The visit's
// own organization wins over the patient's for display.
func annotate(rec *visit.Record, p *patient.Patient) *Entry {
	e := &Entry{Record: rec, PatientName: unknownPatient, Organization: rec.Organization}
	if p != nil {
		e.PatientName = p.FullName
		if e.Organization == "" {
			e.Organization = p.Organization()
		}
	}
	return e
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
