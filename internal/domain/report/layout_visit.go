package report

import (
	"strings"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/printdoc"
	"github.com/poshable/visitlog/pkg/caldate"
)

const (
	lineHeight   = 7.0
	sectionBreak = 260.0
	fieldBreak   = 270.0
	infoBoxH     = 90.0
	fieldIndent  = 40.0
)

var (
	teal    = printdoc.RGB{R: 15, G: 118, B: 110}
	boxFill = printdoc.RGB{R: 240, G: 253, B: 250}
)

// visitPage wraps a composer with the field and section helpers of the
// visit print layout.
type visitPage struct {
	*printdoc.Composer
}

func (p visitPage) section(title string) {
	p.BreakBelow(sectionBreak)
	p.SetStyle(printdoc.Style{Size: 12, Bold: true, Color: teal})
	p.Text(pageMargin, title)
	p.Advance(lineHeight)
}

func (p visitPage) field(label, value string) {
	p.BreakBelow(fieldBreak)
	p.SetStyle(printdoc.Bold(10))
	p.Text(pageMargin, label+": ")
	p.SetStyle(printdoc.Normal(10))
	lines := p.Wrap(orNA(value), p.ContentWidth()-fieldIndent)
	p.Flow(pageMargin+fieldIndent, lines, lineHeight, fieldBreak)
}

func (p visitPage) gap() { p.Advance(5) }

// boxField draws a label and wrapped value inside the patient box and
// returns the y below it.
func (p visitPage) boxField(x, y, labelW, wrapW float64, label, value string) float64 {
	p.SetStyle(printdoc.Bold(9))
	p.TextAt(x, y, label)
	p.SetStyle(printdoc.Normal(9))
	lines := p.Wrap(value, wrapW)
	for i, l := range lines {
		p.TextAt(x+labelW, y+float64(i)*6, l)
	}
	return y + 6*float64(len(lines))
}

// LayoutVisit lays out the print document of one visit. pat may be nil when
// the patient could not be loaded.
func LayoutVisit(m printdoc.Measurer, rec *visit.Record, pat *patient.Patient, generated string) *printdoc.Document {
	p := visitPage{printdoc.NewComposer(printdoc.A4, pageMargin, m)}
	if pat == nil {
		pat = &patient.Patient{FullName: unknownPatient}
	}

	if rec.Type == visit.TypeNurseVisit {
		nurseHeader(p, rec, pat)
	} else {
		compactHeader(p, rec, pat)
	}

	if v := rec.VitalSigns(); v != nil {
		vitalSection(p, v)
	}
	if n := rec.Nurse; n != nil {
		assessmentSections(p, n)
	}

	switch {
	case rec.Daily != nil:
		notesSection(p, "Daily Note", orNoNotes(rec.Daily.DailyNoteContent))
	case rec.Notes() != "":
		notesSection(p, "Nurse Notes", rec.Notes())
	}
	return p.Finish(footer(generated))
}

func headerOrg(rec *visit.Record, pat *patient.Patient) string {
	if rec.Organization != "" {
		return rec.Organization
	}
	if org := pat.Organization(); org != "" {
		return org
	}
	return defaultOrgHeader
}

func visitDateLine(p visitPage, rec *visit.Record) {
	p.SetStyle(printdoc.Normal(11))
	p.Text(pageMargin, "Visit Date: "+rec.Date.US())
	p.Advance(lineHeight * 2)
}

func nurseHeader(p visitPage, rec *visit.Record, pat *patient.Patient) {
	p.SetStyle(printdoc.Style{Size: 22, Bold: true, Color: teal})
	p.Centered("Routine Nurse Visit")
	p.Advance(10)
	p.SetStyle(printdoc.Style{Size: 16, Bold: true, Color: headingGray})
	p.Centered(headerOrg(rec, pat))
	p.Advance(10)
	p.Rule(0.5)
	p.Advance(10)

	fill := boxFill
	p.Rect(infoBoxH, &fill)
	top := p.Y()
	p.SetStyle(printdoc.Bold(12))
	p.TextAt(pageMargin+5, top+6, "Patient Information")

	info := pat.PermanentInfo
	x1, y1 := pageMargin+5, top+13
	y1 = p.boxField(x1, y1, 25, 70, "Name:", orNA(pat.FullName))
	y1 = p.boxField(x1, y1, 25, 70, "DOB:", orNA(usDate(info.DateOfBirth)))
	y1 = p.boxField(x1, y1, 25, 70, "Gender:", orNA(info.Gender))
	y1 = p.boxField(x1, y1, 25, 70, "Race:", orNA(info.Race))
	y1 = p.boxField(x1, y1, 25, 70, "Address:", orNA(info.Address()))
	p.boxField(x1, y1, 25, 70, "Caregiver:", orNA(info.CaregiverName))

	x2, y2 := p.PageWidth()/2+5, top+13
	if dp := info.DayProgram(); dp != "" {
		y2 = p.boxField(x2, y2, 30, 60, "Day Program:", dp)
	}
	y2 += 2
	y2 = p.boxField(x2, y2, 30, 60, "Allergies:", orNone(info.Allergies))
	y2 = p.boxField(x2, y2, 30, 60, "Medical Dx:", orNone(info.MedicalDiagnoses))
	y2 = p.boxField(x2, y2, 30, 60, "Psych Dx:", orNone(info.PsychiatricDiagnoses))
	p.boxField(x2, y2, 30, 60, "Medications:", orNone(info.Medications))

	p.SetY(top + infoBoxH + 10)
	n := rec.Nurse
	if n == nil {
		n = &visit.NurseVisit{}
	}
	serviceRow(p, "Type of Service:", withOther(n.NurseVisitType, n.NurseVisitTypeOther))
	serviceRow(p, "Visit Frequency:", orNA(info.VisitFrequency))
	serviceRow(p, "Patient Seen At:", withOther(n.VisitLocation, n.VisitLocationOther))
	p.Advance(lineHeight)
	visitDateLine(p, rec)
}

func serviceRow(p visitPage, label, value string) {
	p.SetStyle(printdoc.Bold(11))
	p.Text(pageMargin, label)
	p.SetStyle(printdoc.Normal(11))
	p.Text(pageMargin+fieldIndent, value)
	p.Advance(lineHeight)
}

func compactHeader(p visitPage, rec *visit.Record, pat *patient.Patient) {
	p.SetStyle(printdoc.Style{Size: 22, Bold: true, Color: teal})
	p.Centered(headerOrg(rec, pat))
	p.Advance(12)
	p.SetStyle(printdoc.Style{Size: 14, Color: headingGray})
	p.Centered(compactLabel(rec.Type))
	p.Advance(8)
	p.SetStyle(printdoc.Bold(16))
	p.Centered("Resident: " + pat.FullName)
	p.Advance(6)
	p.Rule(0.5)
	p.Advance(10)
	visitDateLine(p, rec)
}

func compactLabel(t visit.Type) string {
	switch t {
	case visit.TypeVitalsOnly:
		return "Vital Signs"
	case visit.TypeDailyNote:
		return "Daily Note"
	}
	return "Visit Report"
}

func vitalSection(p visitPage, v *visit.VitalSigns) {
	p.section("Vital Signs")
	p.field("Weight", unit(v.Weight, " lbs"))
	p.field("Temperature", unit(v.BodyTemperature, "°F"))
	p.field("Blood Pressure", pressure(v.BloodPressureSystolic, v.BloodPressureDiastolic))
	if v.RepeatBloodPressureSystolic != "" {
		p.field("Repeat BP", pressure(v.RepeatBloodPressureSystolic, v.RepeatBloodPressureDiastolic))
	}
	p.field("SpO2", unit(v.PulseOximeter, "%"))
	p.field("Pulse", unit(v.Pulse, " bpm"))
	p.field("Respirations", unit(v.Respirations, "/min"))
	p.gap()
}

func assessmentSections(p visitPage, n *visit.NurseVisit) {
	pa := n.PhysicalAssessment
	p.section("Physical Assessment")
	p.field("General Appearance", pa.GeneralAppearance)
	p.field("Skin Assessment", skinSummary(pa.SkinAssessment))
	p.field("Mobility Level", pa.MobilityLevel)
	p.field("Speech Level", pa.SpeechLevel)
	p.field("Alert & Oriented", pa.AlertOrientedLevel)
	p.gap()

	h := n.HeadToToe
	p.section("Head to Toe Assessment")
	p.field("Head & Neck", checked(h.HeadNeck.OtherNotes,
		flag{"Within normal limits", h.HeadNeck.WithinNormalLimits}, flag{"Wounds", h.HeadNeck.Wounds},
		flag{"Masses", h.HeadNeck.Masses}, flag{"Alopecia", h.HeadNeck.Alopecia}))
	e := h.EyesVision
	p.field("Eyes/Vision", checked(e.OtherNotes,
		flag{"PERRLA: " + e.PupilsPERRLA, e.PupilsPERRLA != ""}, flag{"No issues", e.NoIssues},
		flag{"Glasses", e.Glasses}, flag{"Contacts", e.Contacts}, flag{"Blurred vision", e.BlurredVision},
		flag{"Glaucoma", e.Glaucoma}, flag{"Prosthesis", e.Prosthesis}, flag{withSide("Blind", e.BlindWhich), e.BlindEyes},
		flag{"Cataract surgery", e.CataractSurgery}, flag{"Infections", e.Infections}))
	ear := h.EarsHearing
	p.field("Ears/Hearing", checked(ear.OtherNotes,
		flag{"No issues", ear.NoIssues}, flag{withSide("Deaf", ear.DeafWhich), ear.Deaf},
		flag{"Hard of hearing", ear.HardOfHearing}, flag{"Hearing aid", ear.HearingAid}, flag{"Vertigo", ear.Vertigo},
		flag{"Tinnitus", ear.Tinnitus}, flag{"Infections", ear.Infections}))
	nose := h.NoseNasalCavity
	p.field("Nose/Nasal", checked(nose.OtherNotes,
		flag{"No issues", nose.NoIssues}, flag{"Congestion", nose.Congestion}, flag{"Loss of smell", nose.LossOfSmell},
		flag{"Sinus issues", nose.SinusIssues}, flag{"Runny nose", nose.RunnyNose}, flag{"Nose bleeds", nose.NoseBleeds}))
	mouth := h.MouthTeethOralCavity
	p.field("Mouth/Oral", checked(mouth.OtherNotes,
		flag{"No issues", mouth.NoIssues}, flag{"No teeth", mouth.NoTeeth},
		flag{withList("Dentures", mouth.DenturesType), mouth.Dentures}, flag{"Missing teeth", mouth.MissingTeeth},
		flag{"Toothaches", mouth.Toothaches}, flag{"Gingivitis", mouth.Gingivitis}, flag{"Ulcerations", mouth.Ulcerations}))
	p.gap()

	gi := n.Gastrointestinal
	p.section("Gastrointestinal Assessment")
	p.field("Last Bowel Movement", usDate(gi.LastBowelMovement))
	p.field("Bowel Sounds", gi.BowelSounds)
	p.field("Diet Type", gi.NutritionalDiet)
	p.gap()

	p.section("Genito-Urinary Assessment")
	p.field("Toileting Level", n.GenitoUrinary.ToiletingLevel)
	p.gap()

	p.section("Respiratory Assessment")
	p.field("Lung Sounds", n.Respiratory.LungSounds)
	p.field("Oxygen Type", n.Respiratory.OxygenType)
	p.gap()

	if n.Endocrine.IsDiabetic {
		p.section("Endocrine Assessment")
		p.field("Diabetic", "Yes")
		p.field("Blood Sugar", unit(n.Endocrine.BloodSugar, " mg/dL"))
		p.field("Notes", n.Endocrine.DiabeticNotes)
		p.gap()
	}

	ch := n.ChangesSinceLast
	p.section("Changes Since Last Visit")
	p.field("Medication Changes", ch.MedicationChanges)
	p.field("Diagnosis Changes", ch.DiagnosisChanges)
	p.field("ER/Urgent Care", ch.ERUrgentCareVisits)
	p.field("Upcoming Appointments", ch.UpcomingAppointments)
	p.gap()
}

func notesSection(p visitPage, title, text string) {
	p.section(title)
	p.SetStyle(printdoc.Normal(10))
	p.Flow(pageMargin, p.Wrap(text, p.ContentWidth()), noteLine, fieldBreak)
}

type flag struct {
	label string
	on    bool
}

// checked lists the labels of the set flags followed by notes.
func checked(notes string, flags ...flag) string {
	var parts []string
	for _, f := range flags {
		if f.on {
			parts = append(parts, f.label)
		}
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		parts = append(parts, notes)
	}
	return strings.Join(parts, ", ")
}

func skinSummary(s visit.SkinAssessment) string {
	out := checked(s.OtherNotes,
		flag{"WNL", s.IntegrityWNL}, flag{"Rash", s.IntegrityRash}, flag{"Discolored", s.IntegrityDiscolored},
		flag{"Bruised", s.IntegrityBruised}, flag{"Burns", s.IntegrityBurns}, flag{"Open areas", s.IntegrityOpenAreas},
		flag{"Lacerations", s.IntegrityLacerations}, flag{"Thick", s.IntegrityThick}, flag{"Thin", s.IntegrityThin},
		flag{"Flat lesions", s.IntegrityLesionsFlat}, flag{"Raised lesions", s.IntegrityLesionsRaised})
	if s.SkinTurgor == "" {
		return out
	}
	if out == "" {
		return "Turgor: " + s.SkinTurgor
	}
	return "Turgor: " + s.SkinTurgor + "; " + out
}

func withSide(label, which string) string {
	if which == "" {
		return label
	}
	return label + " (" + which + ")"
}

func withList(label string, items []string) string {
	if len(items) == 0 {
		return label
	}
	return label + " (" + strings.Join(items, ", ") + ")"
}

func unit(v, suffix string) string {
	if v == "" {
		return ""
	}
	return v + suffix
}

func pressure(sys, dia string) string {
	if sys == "" {
		return ""
	}
	return sys + "/" + dia + " mmHg"
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// usDate shows an ISO date as MM/DD/YYYY and passes anything else through.
func usDate(s string) string {
	head := s
	if len(head) > 10 {
		head = head[:10]
	}
	if d, err := caldate.Parse(head); err == nil && !d.IsZero() {
		return d.US()
	}
	return s
}

// withOther title-cases a snake_case choice and appends the free text given
// for "other".
func withOther(choice, other string) string {
	if choice == "" {
		return notAvail
	}
	words := strings.Fields(strings.ReplaceAll(choice, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	out := strings.Join(words, " ")
	if choice == "other" && other != "" {
		out += " (" + other + ")"
	}
	return out
}
