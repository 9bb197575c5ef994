package intervention

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/pkg/caldate"
)

type Type string

const (
	TypeInjection Type = "injection"
	TypeTest      Type = "test"
	TypeTreatment Type = "treatment"
	TypeProcedure Type = "procedure"
	TypeOther     Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInjection, TypeTest, TypeTreatment, TypeProcedure, TypeOther:
		return true
	}
	return false
}

const (
	LocationHome           = "home"
	LocationAdultDayCenter = "adult_day_center"
)

// Option values that unlock a free-text or follow-up field.
const (
	optionOther      = "other"
	vaccinationOther = "Other"
	testTBPlacing    = "tb_placing"
	testTBReading    = "tb_reading"
	procedureSutures = "suture_removal"
	procedureCerumen = "cerumen_removal"
)

// InjectionDetails covers vaccinations and other injected medications. The
// three acknowledgments must all be true before an injection is saved.
type InjectionDetails struct {
	IsVaccination              bool   `json:"is_vaccination"`
	VaccinationType            string `json:"vaccination_type"`
	VaccinationOther           string `json:"vaccination_other"`
	NonVaccinationType         string `json:"non_vaccination_type"`
	NonVaccinationOther        string `json:"non_vaccination_other"`
	Dose                       string `json:"dose"`
	Route                      string `json:"route"`
	Site                       string `json:"site"`
	VerifiedNoAllergicReaction bool   `json:"verified_no_allergic_reaction"`
	CleanedInjectionSite       bool   `json:"cleaned_injection_site"`
	Adhered8Rights             bool   `json:"adhered_8_rights"`
}

type TestDetails struct {
	TestType        string `json:"test_type"`
	TestOther       string `json:"test_other"`
	TBPlacementSite string `json:"tb_placement_site"`
	TBArm           string `json:"tb_arm"`
	Result          string `json:"result"`
	Notes           string `json:"notes"`
}

type TreatmentDetails struct {
	TreatmentType  string `json:"treatment_type"`
	TreatmentOther string `json:"treatment_other"`
	Notes          string `json:"notes"`
}

type ProcedureDetails struct {
	ProcedureType  string `json:"procedure_type"`
	ProcedureOther string `json:"procedure_other"`
	BodySite       string `json:"body_site"`
	SutureCount    *int   `json:"suture_count"`
	EarSide        string `json:"ear_side"`
	Notes          string `json:"notes"`
}

// Record is one documented intervention. Exactly one detail object matches
// Type after Normalize; TypeOther carries only TypeOther text.
type Record struct {
	ID              uuid.UUID    `json:"id"`
	PatientID       uuid.UUID    `json:"patient_id"`
	NurseID         uuid.UUID    `json:"nurse_id"`
	Date            caldate.Date `json:"intervention_date"`
	Time            string       `json:"intervention_time"`
	Location        string       `json:"location"`
	BodyTemperature string       `json:"body_temperature"`
	MoodScale       *int         `json:"mood_scale"`
	Type            Type         `json:"intervention_type"`
	TypeOther       string       `json:"intervention_type_other"`

	Injection *InjectionDetails `json:"injection_details"`
	Test      *TestDetails      `json:"test_details"`
	Treatment *TreatmentDetails `json:"treatment_details"`
	Procedure *ProcedureDetails `json:"procedure_details"`

	VerifiedPatientIdentity bool `json:"verified_patient_identity"`
	DonnedProperPPE         bool `json:"donned_proper_ppe"`

	PostNoSevereSymptoms        bool `json:"post_no_severe_symptoms"`
	PostToleratedWell           bool `json:"post_tolerated_well"`
	PostInformedSideEffects     bool `json:"post_informed_side_effects"`
	PostAdvisedResultsTimeframe bool `json:"post_advised_results_timeframe"`
	PostEducatedSeekCare        bool `json:"post_educated_seek_care"`

	CompletionStatus       string `json:"completion_status"`
	NextVisitInterval      string `json:"next_visit_interval"`
	NextVisitIntervalOther string `json:"next_visit_interval_other"`
	PresentPersonType      string `json:"present_person_type"`
	PresentPersonTypeOther string `json:"present_person_type_other"`
	PresentPersonName      string `json:"present_person_name"`
	AdditionalComments     string `json:"additional_comments"`
	Notes                  string `json:"notes"`

	// Resolved from the patient on read; never stored.
	PatientName string `json:"patient_name,omitempty"`
	PatientDOB  string `json:"patient_dob,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payload is the JSONB document stored alongside the indexed columns.
func (r *Record) Payload() ([]byte, error) {
	cp := *r
	cp.PatientName, cp.PatientDOB = "", ""
	return json.Marshal(cp)
}

// SetPayload decodes a stored document. Columns scanned separately win over
// the copies inside the payload.
func (r *Record) SetPayload(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	head := *r
	if err := json.Unmarshal(b, r); err != nil {
		return err
	}
	r.ID, r.PatientID, r.NurseID = head.ID, head.PatientID, head.NurseID
	r.Type, r.Date = head.Type, head.Date
	r.CreatedAt, r.UpdatedAt = head.CreatedAt, head.UpdatedAt
	r.PatientName, r.PatientDOB = "", ""
	return nil
}
