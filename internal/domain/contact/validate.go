package contact

import (
	"strings"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/pkg/caldate"
)

func Validate(r *Record) error {
	if r.AttemptDate.IsZero() {
		return apperr.Validation("attempt_date", "Attempt date is required")
	}
	if !attemptLocations[r.AttemptLocation] {
		return apperr.Validation("attempt_location", "Please select where the contact was attempted")
	}
	if r.AttemptLocation == AttemptOther && r.AttemptLocationOther == "" {
		return apperr.Validation("attempt_location_other", "Please describe where the contact was attempted")
	}
	if !individualLocations[r.IndividualLocation] {
		return apperr.Validation("individual_location", "Please select the individual's location")
	}
	if r.IndividualLocation == LocationOther && r.IndividualLocationOther == "" {
		return apperr.Validation("individual_location_other", "Please describe the individual's location")
	}
	if r.SpokeWithAnyone && r.SpokeWithWhom == "" {
		return apperr.Validation("spoke_with_whom", "Please enter who you spoke with")
	}
	return nil
}

// Normalize trims text and drops follow-up fields whose triggering choice
// was not made.
func Normalize(r *Record) {
	for _, s := range []*string{
		&r.AttemptTime, &r.AttemptReason, &r.AttemptLocation, &r.AttemptLocationOther, &r.SpokeWithWhom,
		&r.IndividualLocation, &r.IndividualLocationOther, &r.MovedTemporarilyWhere,
		&r.FacilityName, &r.FacilityCity, &r.FacilityState, &r.AdmissionReason, &r.AdditionalInfo,
	} {
		*s = strings.TrimSpace(*s)
	}

	if r.AttemptLocation != AttemptOther {
		r.AttemptLocationOther = ""
	}
	if !r.SpokeWithAnyone {
		r.SpokeWithWhom = ""
	}
	if r.IndividualLocation != LocationOther {
		r.IndividualLocationOther = ""
	}
	if r.IndividualLocation != LocationMovedTemporarily {
		r.MovedTemporarilyWhere = ""
	}
	if r.IndividualLocation != LocationDeceased {
		r.DeceasedDate = caldate.Date{}
	}
	if r.IndividualLocation != LocationAdmitted {
		r.FacilityName, r.FacilityCity, r.FacilityState = "", "", ""
		r.AdmissionDate = caldate.Date{}
		r.AdmissionReason = ""
	}
}
