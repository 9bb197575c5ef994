package intervention

import (
	"strings"

	"github.com/poshable/visitlog/internal/platform/apperr"
)

// Validate checks a normalized record. Checks run in the order the entry
// form presents them and the first failure is returned.
func Validate(r *Record) error {
	if r.Date.IsZero() {
		return apperr.Validation("intervention_date", "Intervention date is required")
	}
	if !r.Type.Valid() {
		return apperr.Validationf("intervention_type", "Invalid intervention type %q", r.Type)
	}
	if r.Location != LocationHome && r.Location != LocationAdultDayCenter {
		return apperr.Validation("location", "Please select the location")
	}
	if !r.VerifiedPatientIdentity {
		return apperr.Validation("verified_patient_identity", "Please verify patient identity")
	}
	if !r.DonnedProperPPE {
		return apperr.Validation("donned_proper_ppe", "Please confirm proper PPE was donned")
	}

	switch r.Type {
	case TypeInjection:
		inj := r.Injection
		if inj == nil {
			inj = &InjectionDetails{}
		}
		if !inj.VerifiedNoAllergicReaction {
			return apperr.Validation("injection_details.verified_no_allergic_reaction",
				"Please verify patient has no allergic reaction to this injection")
		}
		if !inj.CleanedInjectionSite {
			return apperr.Validation("injection_details.cleaned_injection_site",
				"Please confirm injection site was cleaned")
		}
		if !inj.Adhered8Rights {
			return apperr.Validation("injection_details.adhered_8_rights",
				"Please confirm adherence to the 8 rights of medication administration")
		}
	case TypeOther:
		if r.TypeOther == "" {
			return apperr.Validation("intervention_type_other", "Please describe the intervention")
		}
	}

	if r.MoodScale != nil && (*r.MoodScale < 1 || *r.MoodScale > 5) {
		return apperr.Validation("mood_scale", "Mood scale must be between 1 and 5")
	}
	if r.Procedure != nil && r.Procedure.SutureCount != nil && *r.Procedure.SutureCount < 0 {
		return apperr.Validation("procedure_details.suture_count", "Suture count cannot be negative")
	}
	return nil
}

// Normalize trims free text, gives the selected type its detail object, and
// drops everything the selected type and options do not use: detail objects
// of other types, "other" descriptions
// whose option is not selected, and follow-up fields of unselected tests and
// procedures.
func Normalize(r *Record) {
	r.Location = strings.TrimSpace(r.Location)
	r.TypeOther = strings.TrimSpace(r.TypeOther)
	r.Time = strings.TrimSpace(r.Time)
	r.BodyTemperature = strings.TrimSpace(r.BodyTemperature)
	r.Notes = strings.TrimSpace(r.Notes)
	r.AdditionalComments = strings.TrimSpace(r.AdditionalComments)
	r.PresentPersonName = strings.TrimSpace(r.PresentPersonName)

	if r.Type != TypeOther {
		r.TypeOther = ""
	}
	if r.Type != TypeInjection {
		r.Injection = nil
	}
	if r.Type != TypeTest {
		r.Test = nil
	}
	if r.Type != TypeTreatment {
		r.Treatment = nil
	}
	if r.Type != TypeProcedure {
		r.Procedure = nil
	}
	switch {
	case r.Type == TypeInjection && r.Injection == nil:
		r.Injection = &InjectionDetails{}
	case r.Type == TypeTest && r.Test == nil:
		r.Test = &TestDetails{}
	case r.Type == TypeTreatment && r.Treatment == nil:
		r.Treatment = &TreatmentDetails{}
	case r.Type == TypeProcedure && r.Procedure == nil:
		r.Procedure = &ProcedureDetails{}
	}

	if r.NextVisitInterval != optionOther {
		r.NextVisitIntervalOther = ""
	}
	if r.PresentPersonType != optionOther {
		r.PresentPersonTypeOther = ""
	}

	if inj := r.Injection; inj != nil {
		if inj.IsVaccination {
			inj.NonVaccinationType, inj.NonVaccinationOther = "", ""
			if inj.VaccinationType != vaccinationOther {
				inj.VaccinationOther = ""
			}
		} else {
			inj.VaccinationType, inj.VaccinationOther = "", ""
			if inj.NonVaccinationType != vaccinationOther {
				inj.NonVaccinationOther = ""
			}
		}
	}
	if t := r.Test; t != nil {
		if t.TestType != optionOther {
			t.TestOther = ""
		}
		if t.TestType != testTBPlacing && t.TestType != testTBReading {
			t.TBPlacementSite, t.TBArm = "", ""
		}
	}
	if t := r.Treatment; t != nil && t.TreatmentType != optionOther {
		t.TreatmentOther = ""
	}
	if p := r.Procedure; p != nil {
		if p.ProcedureType != optionOther {
			p.ProcedureOther = ""
		}
		if p.ProcedureType != procedureSutures {
			p.SutureCount = nil
		}
		if p.ProcedureType != procedureCerumen {
			p.EarSide = ""
		}
	}
}
