package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/printdoc"
	"github.com/poshable/visitlog/pkg/caldate"
)

var fixed = printdoc.FixedMeasurer{Width: 2}

func monthOf(t *testing.T, visits ...*visit.Record) *Monthly {
	t.Helper()
	pid := visits[0].PatientID
	pats := map[uuid.UUID]*patient.Patient{pid: {ID: pid, FullName: "Jane Doe"}}
	return Aggregate(visits, pats, caldate.MustParse("2024-03-01"), caldate.MustParse("2024-03-31"))
}

func allText(doc *printdoc.Document) string {
	var b strings.Builder
	for _, p := range doc.Pages {
		b.WriteString(strings.Join(p.Texts(), "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func TestLayoutMonthly_DailyNotes(t *testing.T) {
	pid := uuid.New()
	first := newVisit(t, visit.TypeDailyNote, pid, "2024-03-05", "Jericho")
	first.Daily.DailyNoteContent = "Ate breakfast, walked to the park -JD"
	empty := newVisit(t, visit.TypeDailyNote, pid, "2024-03-20", "Jericho")

	h := Heading{Type: visit.TypeDailyNote, PatientName: "Jane Doe", Year: 2024, Month: time.March}
	doc := LayoutMonthly(fixed, monthOf(t, first, empty), h, "03/22/2024, 3:04:05 PM")

	require.Equal(t, 1, doc.PageCount())
	page := doc.Pages[0]
	texts := page.Texts()
	assert.Equal(t, []string{"Daily Notes Report", "Jane Doe", "March 2024"}, texts[:3])
	assert.True(t, page.Contains("03/05/2024"))
	assert.True(t, page.Contains("Ate breakfast"))
	assert.True(t, page.Contains("No notes recorded"), "empty note falls back to the placeholder")
	assert.True(t, page.Contains("Page 1 of 1"))
	assert.True(t, page.Contains("Generated: 03/22/2024, 3:04:05 PM"))
}

func TestLayoutMonthly_Paginates(t *testing.T) {
	pid := uuid.New()
	var visits []*visit.Record
	for day := 1; day <= 30; day++ {
		v := newVisit(t, visit.TypeDailyNote, pid, fmt.Sprintf("2024-03-%02d", day), "")
		v.Daily.DailyNoteContent = "Routine day"
		visits = append(visits, v)
	}
	doc := LayoutMonthly(fixed, monthOf(t, visits...), Heading{Type: visit.TypeDailyNote, Year: 2024, Month: time.March}, "now")

	require.Greater(t, doc.PageCount(), 1)
	for i, p := range doc.Pages {
		assert.True(t, p.Contains(fmt.Sprintf("Page %d of %d", i+1, doc.PageCount())), "footer on page %d", i+1)
		for _, op := range p.Ops {
			if txt, ok := op.(printdoc.TextOp); ok && !strings.HasPrefix(txt.Text, "Page ") && !strings.HasPrefix(txt.Text, "Generated") {
				assert.LessOrEqual(t, txt.Y, 297.0-dailyReserve+noteLine*2, "entry %q runs into the bottom margin", txt.Text)
			}
		}
	}
	assert.True(t, doc.Pages[0].Contains("All Patients"))
	assert.Equal(t, 30, strings.Count(allText(doc), "Routine day"))
}

func longNote(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("note line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

// assertOnPage fails for any text drawn past the bottom margin.
func assertOnPage(t *testing.T, doc *printdoc.Document) {
	t.Helper()
	for i, p := range doc.Pages {
		for _, op := range p.Ops {
			if txt, ok := op.(printdoc.TextOp); ok {
				assert.LessOrEqual(t, txt.Y, doc.Size.Height-10, "page %d: %q drawn off the page", i+1, txt.Text)
			}
		}
	}
}

func TestLayoutMonthly_LongNoteContinuesOnNextPage(t *testing.T) {
	pid := uuid.New()
	v := newVisit(t, visit.TypeDailyNote, pid, "2024-03-05", "Jericho")
	v.Daily.DailyNoteContent = longNote(80)

	doc := LayoutMonthly(fixed, monthOf(t, v), Heading{Type: visit.TypeDailyNote, Year: 2024, Month: time.March}, "now")

	require.Greater(t, doc.PageCount(), 1)
	assertOnPage(t, doc)
	text := allText(doc)
	assert.Contains(t, text, "note line 1\n")
	assert.Contains(t, text, "note line 80")
	assert.Contains(t, strings.Join(doc.Pages[1].Texts(), "\n"), "note line")
}

func TestLayoutVisit_LongNotesContinueOnNextPage(t *testing.T) {
	rec := newVisit(t, visit.TypeVitalsOnly, uuid.New(), "2024-03-05", "Jericho")
	rec.Vitals.NurseNotes = longNote(80)

	doc := LayoutVisit(fixed, rec, nil, "now")

	require.Greater(t, doc.PageCount(), 1)
	assertOnPage(t, doc)
	assert.Contains(t, allText(doc), "note line 80")
}

func TestLayoutMonthly_VitalsFallbacks(t *testing.T) {
	pid := uuid.New()
	v := newVisit(t, visit.TypeVitalsOnly, pid, "2024-03-05", "")
	v.Vitals.VitalSigns = visit.VitalSigns{Weight: "150", BloodPressureSystolic: "120", BloodPressureDiastolic: "80"}

	doc := LayoutMonthly(fixed, monthOf(t, v), Heading{Type: visit.TypeVitalsOnly, Year: 2024, Month: time.March}, "now")
	page := doc.Pages[0]
	assert.Equal(t, "Vital Signs Report", page.Texts()[0])
	assert.True(t, page.Contains("Weight: 150     Height: N/A     Temp: N/A"))
	assert.True(t, page.Contains("BP: 120/80     Pulse Ox: N/A%     Pulse: N/A     Resp: N/A"))
}

func TestLayoutMonthly_NurseVisitSummaryOnlyWithVitals(t *testing.T) {
	pid := uuid.New()
	with := newVisit(t, visit.TypeNurseVisit, pid, "2024-03-05", "")
	with.Nurse.VitalSigns.Pulse = "72"
	with.Nurse.NurseNotes = "Stable"
	without := newVisit(t, visit.TypeNurseVisit, pid, "2024-03-06", "")
	without.Nurse.VitalSigns.Height = "5'6\""

	doc := LayoutMonthly(fixed, monthOf(t, with, without), Heading{Type: visit.TypeNurseVisit, Year: 2024, Month: time.March}, "now")
	text := allText(doc)
	assert.Equal(t, 1, strings.Count(text, "BP: N/A/N/A, Temp: N/A, Pulse: 72"))
	assert.Equal(t, 1, strings.Count(text, "BP:"), "height alone does not print a vitals line")
	assert.Contains(t, text, "Stable")
	assert.Contains(t, text, "No notes recorded")
}

func TestLayoutVisit_NurseVisit(t *testing.T) {
	pat := &patient.Patient{
		ID:       uuid.New(),
		FullName: "Jane Doe",
		PermanentInfo: patient.PermanentInfo{
			Organization: "Jericho",
			DateOfBirth:  "1950-02-01",
			Allergies:    []string{"Penicillin"},
		},
	}
	rec := newVisit(t, visit.TypeNurseVisit, pat.ID, "2024-03-05", "")
	rec.Nurse.NurseVisitType = "routine_visit"
	rec.Nurse.VisitLocation = "other"
	rec.Nurse.VisitLocationOther = "Library"
	rec.Nurse.VitalSigns.BloodPressureSystolic = "150"
	rec.Nurse.VitalSigns.BloodPressureDiastolic = "85"
	rec.Nurse.VitalSigns.RepeatBloodPressureSystolic = "138"
	rec.Nurse.VitalSigns.RepeatBloodPressureDiastolic = "84"
	rec.Nurse.PhysicalAssessment.MobilityLevel = "Ambulatory"
	rec.Nurse.NurseNotes = "Follow up next week"

	doc := LayoutVisit(fixed, rec, pat, "now")
	text := allText(doc)

	for _, want := range []string{
		"Routine Nurse Visit", "Jericho", "Patient Information", "02/01/1950", "Penicillin",
		"Routine Visit", "Other (Library)", "Visit Date: 03/05/2024",
		"150/85 mmHg", "138/84 mmHg", "Ambulatory", "Head to Toe Assessment",
		"Changes Since Last Visit", "Nurse Notes", "Follow up next week",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "Endocrine Assessment", "endocrine only for diabetics")
	last := doc.Pages[doc.PageCount()-1]
	assert.True(t, last.Contains(fmt.Sprintf("Page %d of %d", doc.PageCount(), doc.PageCount())))
}

func TestLayoutVisit_CompactTypes(t *testing.T) {
	pat := &patient.Patient{ID: uuid.New(), FullName: "Jane Doe"}

	vitals := newVisit(t, visit.TypeVitalsOnly, pat.ID, "2024-03-05", "")
	vitals.Vitals.VitalSigns.Weight = "150"
	text := allText(LayoutVisit(fixed, vitals, pat, "now"))
	assert.Contains(t, text, "POSH-Able Living")
	assert.Contains(t, text, "Resident: Jane Doe")
	assert.Contains(t, text, "150 lbs")
	assert.NotContains(t, text, "Physical Assessment")

	note := newVisit(t, visit.TypeDailyNote, pat.ID, "2024-03-05", "Jericho")
	note.Daily.DailyNoteContent = "Calm day -JD"
	text = allText(LayoutVisit(fixed, note, nil, "now"))
	assert.Contains(t, text, "Daily Note")
	assert.Contains(t, text, "Calm day -JD")
	assert.Contains(t, text, "Resident: Unknown")
	assert.NotContains(t, text, "Vital Signs\n")
}

func TestLayoutVisit_DiabeticEndocrine(t *testing.T) {
	rec := newVisit(t, visit.TypeNurseVisit, uuid.New(), "2024-03-05", "")
	rec.Nurse.Endocrine = visit.Endocrine{IsDiabetic: true, BloodSugar: "110"}
	text := allText(LayoutVisit(fixed, rec, nil, "now"))
	assert.Contains(t, text, "Endocrine Assessment")
	assert.Contains(t, text, "110 mg/dL")
}
