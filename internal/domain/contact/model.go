// Package contact records failed attempts to reach a patient ("unable to
// contact") and where the individual was at the time.
package contact

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/pkg/caldate"
)

// Where the attempt was made.
const (
	AttemptHome       = "home"
	AttemptDayProgram = "day_program"
	AttemptTelephone  = "telephone"
	AttemptVirtual    = "virtual"
	AttemptOther      = "other"
)

// Where the individual was.
const (
	LocationAdmitted           = "admitted"
	LocationMedicalAppointment = "medical_appointment"
	LocationOvernightFamily    = "overnight_family"
	LocationOuting             = "outing"
	LocationMovedTemporarily   = "moved_temporarily"
	LocationMovedPermanently   = "moved_permanently"
	LocationDeceased           = "deceased"
	LocationOther              = "other"
)

var attemptLocations = map[string]bool{
	AttemptHome: true, AttemptDayProgram: true, AttemptTelephone: true, AttemptVirtual: true, AttemptOther: true,
}

var individualLocations = map[string]bool{
	LocationAdmitted: true, LocationMedicalAppointment: true, LocationOvernightFamily: true, LocationOuting: true,
	LocationMovedTemporarily: true, LocationMovedPermanently: true, LocationDeceased: true, LocationOther: true,
}

// Record is one unable-to-contact event.
type Record struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	NurseID   uuid.UUID `json:"nurse_id"`

	VisitType            string       `json:"visit_type"`
	AttemptDate          caldate.Date `json:"attempt_date"`
	AttemptTime          string       `json:"attempt_time"`
	AttemptReason        string       `json:"attempt_reason"`
	AttemptLocation      string       `json:"attempt_location"`
	AttemptLocationOther string       `json:"attempt_location_other"`
	SpokeWithAnyone      bool         `json:"spoke_with_anyone"`
	SpokeWithWhom        string       `json:"spoke_with_whom"`

	IndividualLocation      string       `json:"individual_location"`
	IndividualLocationOther string       `json:"individual_location_other"`
	MovedTemporarilyWhere   string       `json:"moved_temporarily_where"`
	DeceasedDate            caldate.Date `json:"deceased_date"`
	FacilityName            string       `json:"facility_name"`
	FacilityCity            string       `json:"facility_city"`
	FacilityState           string       `json:"facility_state"`
	AdmissionDate           caldate.Date `json:"admission_date"`
	AdmissionReason         string       `json:"admission_reason"`
	ExpectedReturnDate      caldate.Date `json:"expected_return_date"`
	AdditionalInfo          string       `json:"additional_info"`

	// Resolved on read; never stored.
	PatientName string `json:"patient_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Record) Payload() ([]byte, error) {
	cp := *r
	cp.PatientName = ""
	return json.Marshal(cp)
}

// SetPayload decodes a stored document, keeping the scanned columns.
func (r *Record) SetPayload(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	head := *r
	if err := json.Unmarshal(b, r); err != nil {
		return err
	}
	r.ID, r.PatientID, r.NurseID = head.ID, head.PatientID, head.NurseID
	r.AttemptDate, r.IndividualLocation = head.AttemptDate, head.IndividualLocation
	r.CreatedAt = head.CreatedAt
	r.PatientName = ""
	return nil
}
