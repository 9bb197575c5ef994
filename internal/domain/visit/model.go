package visit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/pkg/caldate"
)

// Type selects which body a Record carries.
type Type string

const (
	TypeNurseVisit Type = "nurse_visit"
	TypeVitalsOnly Type = "vitals_only"
	TypeDailyNote  Type = "daily_note"

	// typeIntervention is offered by the visit-type picker but recorded
	// through the intervention package.
	typeIntervention Type = "patient_intervention"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNurseVisit, TypeVitalsOnly, TypeDailyNote:
		return true
	}
	return false
}

// Label is the human name used in headers and report titles.
func (t Type) Label() string {
	switch t {
	case TypeNurseVisit:
		return "Nurse Visit"
	case TypeVitalsOnly:
		return "Vitals Only"
	case TypeDailyNote:
		return "Resident's Daily Note"
	}
	return "Visit"
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool { return s == StatusDraft || s == StatusCompleted }

// Overall health statuses.
const (
	HealthStable         = "Stable"
	HealthUnstable       = "Unstable"
	HealthDeteriorating  = "Deteriorating"
	HealthNeedsAttention = "Needs Immediate Attention"
)

func validHealthStatus(s string) bool {
	switch s {
	case "", HealthStable, HealthUnstable, HealthDeteriorating, HealthNeedsAttention:
		return true
	}
	return false
}

type VitalSigns struct {
	Height                       string `json:"height"`
	Weight                       string `json:"weight"`
	BodyTemperature              string `json:"body_temperature"`
	BloodPressureSystolic        string `json:"blood_pressure_systolic"`
	BloodPressureDiastolic       string `json:"blood_pressure_diastolic"`
	PulseOximeter                string `json:"pulse_oximeter"`
	Pulse                        string `json:"pulse"`
	Respirations                 string `json:"respirations"`
	RepeatBloodPressureSystolic  string `json:"repeat_blood_pressure_systolic"`
	RepeatBloodPressureDiastolic string `json:"repeat_blood_pressure_diastolic"`
	BPAbnormal                   bool   `json:"bp_abnormal"`
}

// Recorded reports whether any measurement was entered. Height alone does
// not count since it is prefilled.
func (v VitalSigns) Recorded() bool {
	return v.Weight != "" || v.BodyTemperature != "" || v.BloodPressureSystolic != "" ||
		v.BloodPressureDiastolic != "" || v.PulseOximeter != "" || v.Pulse != "" || v.Respirations != ""
}

type SkinAssessment struct {
	SkinTurgor             string `json:"skin_turgor"`
	IntegrityWNL           bool   `json:"integrity_wnl"`
	IntegrityRash          bool   `json:"integrity_rash"`
	IntegrityDiscolored    bool   `json:"integrity_discolored"`
	IntegrityBruised       bool   `json:"integrity_bruised"`
	IntegrityBurns         bool   `json:"integrity_burns"`
	IntegrityOpenAreas     bool   `json:"integrity_open_areas"`
	IntegrityLacerations   bool   `json:"integrity_lacerations"`
	IntegrityThick         bool   `json:"integrity_thick"`
	IntegrityThin          bool   `json:"integrity_thin"`
	IntegrityLesionsFlat   bool   `json:"integrity_lesions_flat"`
	IntegrityLesionsRaised bool   `json:"integrity_lesions_raised"`
	OtherNotes             string `json:"other_notes"`
}

type PhysicalAssessment struct {
	GeneralAppearance           string         `json:"general_appearance"`
	GeneralAppearanceFromLast   bool           `json:"general_appearance_from_last"`
	SkinAssessment              SkinAssessment `json:"skin_assessment"`
	SkinAssessmentFromLast      bool           `json:"skin_assessment_from_last"`
	MobilityLevel               string         `json:"mobility_level"`
	MobilityLevelFromLast       bool           `json:"mobility_level_from_last"`
	SpeechLevel                 string         `json:"speech_level"`
	SpeechLevelFromLast         bool           `json:"speech_level_from_last"`
	AlertOrientedLevel          string         `json:"alert_oriented_level"`
	AlertOrientedLevelFromLast  bool           `json:"alert_oriented_level_from_last"`
	GaitStatus                  string         `json:"gait_status"`
	FallIncidenceSinceLastVisit string         `json:"fall_incidence_since_last_visit"`
}

type HeadNeckAssessment struct {
	WithinNormalLimits bool   `json:"within_normal_limits"`
	Wounds             bool   `json:"wounds"`
	Masses             bool   `json:"masses"`
	Alopecia           bool   `json:"alopecia"`
	Other              bool   `json:"other"`
	OtherNotes         string `json:"other_notes"`
}

type EyesVisionAssessment struct {
	PupilsPERRLA    string `json:"pupils_perrla"`
	NoIssues        bool   `json:"no_issues"`
	Glasses         bool   `json:"glasses"`
	Contacts        bool   `json:"contacts"`
	BlurredVision   bool   `json:"blurred_vision"`
	Glaucoma        bool   `json:"glaucoma"`
	Prosthesis      bool   `json:"prosthesis"`
	BlindEyes       bool   `json:"blind_eyes"`
	BlindWhich      string `json:"blind_which"`
	CataractSurgery bool   `json:"cataract_surgery"`
	Infections      bool   `json:"infections"`
	Other           bool   `json:"other"`
	OtherNotes      string `json:"other_notes"`
}

type EarsHearingAssessment struct {
	NoIssues      bool   `json:"no_issues"`
	Deaf          bool   `json:"deaf"`
	DeafWhich     string `json:"deaf_which"`
	HardOfHearing bool   `json:"hard_of_hearing"`
	HearingAid    bool   `json:"hearing_aid"`
	Vertigo       bool   `json:"vertigo"`
	Tinnitus      bool   `json:"tinnitus"`
	Infections    bool   `json:"infections"`
	Other         bool   `json:"other"`
	OtherNotes    string `json:"other_notes"`
}

type NoseAssessment struct {
	NoIssues    bool   `json:"no_issues"`
	Congestion  bool   `json:"congestion"`
	LossOfSmell bool   `json:"loss_of_smell"`
	SinusIssues bool   `json:"sinus_issues"`
	RunnyNose   bool   `json:"runny_nose"`
	NoseBleeds  bool   `json:"nose_bleeds"`
	Other       bool   `json:"other"`
	OtherNotes  string `json:"other_notes"`
}

// UnmarshalJSON also accepts the free-text form older records used.
func (n *NoseAssessment) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NoseAssessment{OtherNotes: s, Other: s != ""}
		return nil
	}
	type plain NoseAssessment
	return json.Unmarshal(b, (*plain)(n))
}

type MouthAssessment struct {
	NoIssues     bool     `json:"no_issues"`
	NoTeeth      bool     `json:"no_teeth"`
	Dentures     bool     `json:"dentures"`
	DenturesType []string `json:"dentures_type"`
	MissingTeeth bool     `json:"missing_teeth"`
	Toothaches   bool     `json:"toothaches"`
	Gingivitis   bool     `json:"gingivitis"`
	Ulcerations  bool     `json:"ulcerations"`
	Other        bool     `json:"other"`
	OtherNotes   string   `json:"other_notes"`
}

func (m MouthAssessment) isZero() bool {
	return len(m.DenturesType) == 0 && !m.NoIssues && !m.NoTeeth && !m.Dentures && !m.MissingTeeth &&
		!m.Toothaches && !m.Gingivitis && !m.Ulcerations && !m.Other && m.OtherNotes == ""
}

func (m MouthAssessment) clone() MouthAssessment {
	m.DenturesType = append([]string{}, m.DenturesType...)
	return m
}

type HeadToToe struct {
	HeadNeck                     HeadNeckAssessment    `json:"head_neck"`
	HeadNeckFromLast             bool                  `json:"head_neck_from_last"`
	EyesVision                   EyesVisionAssessment  `json:"eyes_vision"`
	EyesVisionFromLast           bool                  `json:"eyes_vision_from_last"`
	EarsHearing                  EarsHearingAssessment `json:"ears_hearing"`
	EarsHearingFromLast          bool                  `json:"ears_hearing_from_last"`
	NoseNasalCavity              NoseAssessment        `json:"nose_nasal_cavity"`
	NoseNasalCavityFromLast      bool                  `json:"nose_nasal_cavity_from_last"`
	MouthTeethOralCavity         MouthAssessment       `json:"mouth_teeth_oral_cavity"`
	MouthTeethOralCavityFromLast bool                  `json:"mouth_teeth_oral_cavity_from_last"`
}

type Gastrointestinal struct {
	LastBowelMovement   string `json:"last_bowel_movement"`
	BowelSounds         string `json:"bowel_sounds"`
	NutritionalDiet     string `json:"nutritional_diet"`
	AbdominalPain       bool   `json:"abdominal_pain"`
	Diarrhea            bool   `json:"diarrhea"`
	HardStool           bool   `json:"hard_stool"`
	BowelFrequency      string `json:"bowel_frequency"`
	ConstipationControl string `json:"constipation_control"`
}

type GenitoUrinary struct {
	ToiletingLevel string `json:"toileting_level"`
}

type Respiratory struct {
	LungSounds string `json:"lung_sounds"`
	OxygenType string `json:"oxygen_type"`
}

type Endocrine struct {
	IsDiabetic          bool   `json:"is_diabetic"`
	DiabeticNotes       string `json:"diabetic_notes"`
	BloodSugar          string `json:"blood_sugar"`
	BloodSugarDate      string `json:"blood_sugar_date"`
	BloodSugarTimeOfDay string `json:"blood_sugar_time_of_day"`
}

type ChangesSinceLast struct {
	MedicationChanges    string `json:"medication_changes"`
	DiagnosisChanges     string `json:"diagnosis_changes"`
	ERUrgentCareVisits   string `json:"er_urgent_care_visits"`
	UpcomingAppointments string `json:"upcoming_appointments"`
}

type LogbookItem struct {
	Reviewed      bool `json:"reviewed"`
	Unavailable   bool `json:"unavailable"`
	NotApplicable bool `json:"not_applicable"`
}

// HomeVisitLogbook records which home logbooks were checked. The *Checked
// flags are the older single-checkbox form.
type HomeVisitLogbook struct {
	LockedMeds              LogbookItem `json:"locked_meds"`
	MAR                     LogbookItem `json:"mar"`
	BloodGlucose            LogbookItem `json:"blood_glucose"`
	BowelMovement           LogbookItem `json:"bowel_movement"`
	VitalSigns              LogbookItem `json:"vital_signs"`
	Seizure                 LogbookItem `json:"seizure"`
	Other                   LogbookItem `json:"other"`
	OtherDescription        string      `json:"other_description"`
	Notes                   string      `json:"notes"`
	LockedMedsChecked       bool        `json:"locked_meds_checked"`
	MARReviewed             bool        `json:"mar_reviewed"`
	BMLogChecked            bool        `json:"bm_log_checked"`
	CommunicationLogChecked bool        `json:"communication_log_checked"`
	SeizureLogChecked       bool        `json:"seizure_log_checked"`
}

// NurseVisit is the full routine nurse assessment.
type NurseVisit struct {
	NurseVisitType      string             `json:"nurse_visit_type"`
	NurseVisitTypeOther string             `json:"nurse_visit_type_other"`
	VisitLocation       string             `json:"visit_location"`
	VisitLocationOther  string             `json:"visit_location_other"`
	VitalSigns          VitalSigns         `json:"vital_signs"`
	PhysicalAssessment  PhysicalAssessment `json:"physical_assessment"`
	HeadToToe           HeadToToe          `json:"head_to_toe"`
	Gastrointestinal    Gastrointestinal   `json:"gastrointestinal"`
	GenitoUrinary       GenitoUrinary      `json:"genito_urinary"`
	Respiratory         Respiratory        `json:"respiratory"`
	Endocrine           Endocrine          `json:"endocrine"`
	ChangesSinceLast    ChangesSinceLast   `json:"changes_since_last"`
	HomeVisitLogbook    HomeVisitLogbook   `json:"home_visit_logbook"`
	OverallHealthStatus string             `json:"overall_health_status"`
	NurseNotes          string             `json:"nurse_notes"`
	Attachments         []string           `json:"attachments"`
	ReviewedAndSignedBy string             `json:"reviewed_and_signed_by"`
}

// VitalsOnly is a vital-signs check without the assessment.
type VitalsOnly struct {
	VitalSigns          VitalSigns `json:"vital_signs"`
	OverallHealthStatus string     `json:"overall_health_status"`
	NurseNotes          string     `json:"nurse_notes"`
}

type DailyNote struct {
	DailyNoteContent string `json:"daily_note_content"`
}

// Record is one documented visit. Exactly one of Nurse, Vitals and Daily is
// set, matching Type.
type Record struct {
	ID                   uuid.UUID
	PatientID            uuid.UUID
	NurseID              uuid.UUID
	Type                 Type
	Date                 caldate.Date
	Status               Status
	Organization         string
	ScreeningCompletedBy string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Nurse  *NurseVisit
	Vitals *VitalsOnly
	Daily  *DailyNote
}

// New builds an empty completed record of type t with only its own body
// populated.
func New(t Type) (*Record, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown visit type %q", t)
	}
	r := &Record{Type: t, Status: StatusCompleted}
	r.resetBody()
	return r, nil
}

func (r *Record) resetBody() {
	r.Nurse, r.Vitals, r.Daily = nil, nil, nil
	switch r.Type {
	case TypeNurseVisit:
		r.Nurse = &NurseVisit{Attachments: []string{}}
		r.Nurse.HeadToToe.MouthTeethOralCavity.DenturesType = []string{}
	case TypeVitalsOnly:
		r.Vitals = &VitalsOnly{}
	case TypeDailyNote:
		r.Daily = &DailyNote{}
	}
}

// VitalSigns returns the record's vitals, or nil for daily notes.
func (r *Record) VitalSigns() *VitalSigns {
	switch {
	case r.Nurse != nil:
		return &r.Nurse.VitalSigns
	case r.Vitals != nil:
		return &r.Vitals.VitalSigns
	}
	return nil
}

// Notes is the free text shown in listings: nurse notes, or the note
// content of a daily note.
func (r *Record) Notes() string {
	switch {
	case r.Nurse != nil:
		return r.Nurse.NurseNotes
	case r.Vitals != nil:
		return r.Vitals.NurseNotes
	case r.Daily != nil:
		return r.Daily.DailyNoteContent
	}
	return ""
}

func (r *Record) OverallHealthStatus() string {
	switch {
	case r.Nurse != nil:
		return r.Nurse.OverallHealthStatus
	case r.Vitals != nil:
		return r.Vitals.OverallHealthStatus
	}
	return ""
}

// body returns the active variant, or nil when it is unset.
func (r *Record) body() interface{} {
	switch {
	case r.Type == TypeNurseVisit && r.Nurse != nil:
		return r.Nurse
	case r.Type == TypeVitalsOnly && r.Vitals != nil:
		return r.Vitals
	case r.Type == TypeDailyNote && r.Daily != nil:
		return r.Daily
	}
	return nil
}

// Payload is the JSON of the active variant as stored in the payload column.
func (r *Record) Payload() ([]byte, error) {
	if r.body() == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.body())
}

// SetPayload decodes a stored payload into a fresh body for r.Type.
func (r *Record) SetPayload(b []byte) error {
	r.resetBody()
	if len(b) == 0 || r.body() == nil {
		return nil
	}
	return json.Unmarshal(b, r.body())
}

type header struct {
	ID                   uuid.UUID    `json:"id"`
	PatientID            uuid.UUID    `json:"patient_id"`
	NurseID              uuid.UUID    `json:"nurse_id"`
	Type                 Type         `json:"visit_type"`
	Date                 caldate.Date `json:"visit_date"`
	Status               Status       `json:"status"`
	Organization         string       `json:"organization"`
	ScreeningCompletedBy string       `json:"screening_completed_by"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (r *Record) header() header {
	return header{
		ID:                   r.ID,
		PatientID:            r.PatientID,
		NurseID:              r.NurseID,
		Type:                 r.Type,
		Date:                 r.Date,
		Status:               r.Status,
		Organization:         r.Organization,
		ScreeningCompletedBy: r.ScreeningCompletedBy,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// MarshalJSON flattens the identity fields and the active body into one
// object, the shape clients exchange.
func (r Record) MarshalJSON() ([]byte, error) {
	head, err := json.Marshal(r.header())
	if err != nil {
		return nil, err
	}
	body, err := r.Payload()
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) <= 2 {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}

// UnmarshalJSON reads the flat shape. Groups that belong to another visit
// type are dropped. A missing visit_type means nurse_visit.
func (r *Record) UnmarshalJSON(b []byte) error {
	var h header
	if err := json.Unmarshal(b, &h); err != nil {
		return err
	}
	if h.Type == "" {
		h.Type = TypeNurseVisit
	}
	if !h.Type.Valid() && h.Type != typeIntervention {
		return fmt.Errorf("unknown visit type %q", h.Type)
	}
	*r = Record{
		ID:                   h.ID,
		PatientID:            h.PatientID,
		NurseID:              h.NurseID,
		Type:                 h.Type,
		Date:                 h.Date,
		Status:               h.Status,
		Organization:         h.Organization,
		ScreeningCompletedBy: h.ScreeningCompletedBy,
		CreatedAt:            h.CreatedAt,
		UpdatedAt:            h.UpdatedAt,
	}
	return r.SetPayload(b)
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	cp := *r
	switch {
	case r.Nurse != nil:
		n := *r.Nurse
		n.Attachments = append([]string{}, r.Nurse.Attachments...)
		n.HeadToToe.MouthTeethOralCavity = r.Nurse.HeadToToe.MouthTeethOralCavity.clone()
		cp.Nurse = &n
	case r.Vitals != nil:
		v := *r.Vitals
		cp.Vitals = &v
	case r.Daily != nil:
		d := *r.Daily
		cp.Daily = &d
	}
	return &cp
}

// ListFilter narrows a patient's visit listing.
type ListFilter struct {
	Type    Type
	Status  Status
	NurseID *uuid.UUID
}

// RangeFilter selects visits for reports. Zero fields do not filter.
type RangeFilter struct {
	From         caldate.Date
	To           caldate.Date
	Type         Type
	PatientID    *uuid.UUID
	NurseID      *uuid.UUID
	Organization string
	Status       Status
}
