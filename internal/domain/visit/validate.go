package visit

import (
	"strings"

	"github.com/poshable/visitlog/internal/platform/apperr"
)

// Validate checks a record before it is saved. Beyond the date, only a
// nurse visit's screening attestation is required.
func Validate(r *Record) error {
	if !r.Type.Valid() {
		return apperr.Validationf("visit_type", "Invalid visit type %q", r.Type)
	}
	if !r.Status.Valid() {
		return apperr.Validationf("status", "Invalid status %q", r.Status)
	}
	if r.Date.IsZero() {
		return apperr.Validation("visit_date", "Visit date is required")
	}
	if r.body() == nil {
		return apperr.Validationf("visit_type", "Missing %s details", r.Type)
	}
	if !validHealthStatus(r.OverallHealthStatus()) {
		return apperr.Validationf("overall_health_status", "Invalid overall health status %q", r.OverallHealthStatus())
	}
	if r.Type == TypeNurseVisit && strings.TrimSpace(r.ScreeningCompletedBy) == "" {
		return apperr.Validation("screening_completed_by", "Screening completed by is required")
	}
	return nil
}

// normalize trims free text and clears values that only make sense under a
// flag that is unset.
func normalize(r *Record) {
	r.Organization = strings.TrimSpace(r.Organization)
	r.ScreeningCompletedBy = strings.TrimSpace(r.ScreeningCompletedBy)
	if v := r.VitalSigns(); v != nil {
		v.normalize()
	}
	if n := r.Nurse; n != nil {
		if n.Attachments == nil {
			n.Attachments = []string{}
		}
		if n.HeadToToe.MouthTeethOralCavity.DenturesType == nil {
			n.HeadToToe.MouthTeethOralCavity.DenturesType = []string{}
		}
		if n.NurseVisitType != "other" {
			n.NurseVisitTypeOther = ""
		}
		if n.VisitLocation != "other" {
			n.VisitLocationOther = ""
		}
	}
}
