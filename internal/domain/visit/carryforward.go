package visit

import (
	"errors"

	"github.com/poshable/visitlog/internal/platform/apperr"
)

// Sections that hold carry-forward fields.
const (
	SectionPhysicalAssessment = "physical_assessment"
	SectionHeadToToe          = "head_to_toe"
)

var (
	ErrNoPreviousVisit = &apperr.Error{Kind: apperr.ErrNotFound, Message: "No previous visit found"}
	ErrNoPreviousData  = &apperr.Error{Kind: apperr.ErrNotFound, Message: "No previous data found for this field"}
	ErrNotCarryable    = errors.New("field cannot be pulled from the last visit")
)

// CarryField names a field that can be copied from the patient's last
// visit. Only the fields declared below exist.
type CarryField struct {
	Section string `json:"section"`
	Field   string `json:"field"`
}

func (f CarryField) String() string { return f.Section + "." + f.Field }

var (
	CarryGeneralAppearance    = CarryField{SectionPhysicalAssessment, "general_appearance"}
	CarrySkinAssessment       = CarryField{SectionPhysicalAssessment, "skin_assessment"}
	CarryMobilityLevel        = CarryField{SectionPhysicalAssessment, "mobility_level"}
	CarrySpeechLevel          = CarryField{SectionPhysicalAssessment, "speech_level"}
	CarryAlertOrientedLevel   = CarryField{SectionPhysicalAssessment, "alert_oriented_level"}
	CarryHeadNeck             = CarryField{SectionHeadToToe, "head_neck"}
	CarryEyesVision           = CarryField{SectionHeadToToe, "eyes_vision"}
	CarryEarsHearing          = CarryField{SectionHeadToToe, "ears_hearing"}
	CarryNoseNasalCavity      = CarryField{SectionHeadToToe, "nose_nasal_cavity"}
	CarryMouthTeethOralCavity = CarryField{SectionHeadToToe, "mouth_teeth_oral_cavity"}
)

// carrier knows whether the source holds a value for its field and how to
// copy it, raising the matching _from_last flag.
type carrier struct {
	present func(src *NurseVisit) bool
	copy    func(dst, src *NurseVisit)
}

var carryTable = map[CarryField]carrier{
	CarryGeneralAppearance: {
		present: func(s *NurseVisit) bool { return s.PhysicalAssessment.GeneralAppearance != "" },
		copy: func(d, s *NurseVisit) {
			d.PhysicalAssessment.GeneralAppearance = s.PhysicalAssessment.GeneralAppearance
			d.PhysicalAssessment.GeneralAppearanceFromLast = true
		},
	},
	CarrySkinAssessment: {
		present: func(s *NurseVisit) bool { return s.PhysicalAssessment.SkinAssessment != SkinAssessment{} },
		copy: func(d, s *NurseVisit) {
			d.PhysicalAssessment.SkinAssessment = s.PhysicalAssessment.SkinAssessment
			d.PhysicalAssessment.SkinAssessmentFromLast = true
		},
	},
	CarryMobilityLevel: {
		present: func(s *NurseVisit) bool { return s.PhysicalAssessment.MobilityLevel != "" },
		copy: func(d, s *NurseVisit) {
			d.PhysicalAssessment.MobilityLevel = s.PhysicalAssessment.MobilityLevel
			d.PhysicalAssessment.MobilityLevelFromLast = true
		},
	},
	CarrySpeechLevel: {
		present: func(s *NurseVisit) bool { return s.PhysicalAssessment.SpeechLevel != "" },
		copy: func(d, s *NurseVisit) {
			d.PhysicalAssessment.SpeechLevel = s.PhysicalAssessment.SpeechLevel
			d.PhysicalAssessment.SpeechLevelFromLast = true
		},
	},
	CarryAlertOrientedLevel: {
		present: func(s *NurseVisit) bool { return s.PhysicalAssessment.AlertOrientedLevel != "" },
		copy: func(d, s *NurseVisit) {
			d.PhysicalAssessment.AlertOrientedLevel = s.PhysicalAssessment.AlertOrientedLevel
			d.PhysicalAssessment.AlertOrientedLevelFromLast = true
		},
	},
	CarryHeadNeck: {
		present: func(s *NurseVisit) bool { return s.HeadToToe.HeadNeck != HeadNeckAssessment{} },
		copy: func(d, s *NurseVisit) {
			d.HeadToToe.HeadNeck = s.HeadToToe.HeadNeck
			d.HeadToToe.HeadNeckFromLast = true
		},
	},
	CarryEyesVision: {
		present: func(s *NurseVisit) bool { return s.HeadToToe.EyesVision != EyesVisionAssessment{} },
		copy: func(d, s *NurseVisit) {
			d.HeadToToe.EyesVision = s.HeadToToe.EyesVision
			d.HeadToToe.EyesVisionFromLast = true
		},
	},
	CarryEarsHearing: {
		present: func(s *NurseVisit) bool { return s.HeadToToe.EarsHearing != EarsHearingAssessment{} },
		copy: func(d, s *NurseVisit) {
			d.HeadToToe.EarsHearing = s.HeadToToe.EarsHearing
			d.HeadToToe.EarsHearingFromLast = true
		},
	},
	CarryNoseNasalCavity: {
		present: func(s *NurseVisit) bool { return s.HeadToToe.NoseNasalCavity != NoseAssessment{} },
		copy: func(d, s *NurseVisit) {
			d.HeadToToe.NoseNasalCavity = s.HeadToToe.NoseNasalCavity
			d.HeadToToe.NoseNasalCavityFromLast = true
		},
	},
	CarryMouthTeethOralCavity: {
		present: func(s *NurseVisit) bool { return !s.HeadToToe.MouthTeethOralCavity.isZero() },
		copy: func(d, s *NurseVisit) {
			d.HeadToToe.MouthTeethOralCavity = s.HeadToToe.MouthTeethOralCavity.clone()
			d.HeadToToe.MouthTeethOralCavityFromLast = true
		},
	},
}

// ParseCarryField resolves a (section, field) pair from a request.
func ParseCarryField(section, field string) (CarryField, error) {
	f := CarryField{Section: section, Field: field}
	if _, ok := carryTable[f]; !ok {
		return CarryField{}, ErrNotCarryable
	}
	return f, nil
}

// CarryFields lists the eligible fields, physical assessment first.
func CarryFields() []CarryField {
	return []CarryField{
		CarryGeneralAppearance, CarrySkinAssessment, CarryMobilityLevel,
		CarrySpeechLevel, CarryAlertOrientedLevel, CarryHeadNeck, CarryEyesVision,
		CarryEarsHearing, CarryNoseNasalCavity, CarryMouthTeethOralCavity,
	}
}

// PullFromLast copies one field from last into current and marks it as
// carried forward. last may be nil. On error current is not modified.
// Repeating the call without edits in between leaves current unchanged.
func PullFromLast(current, last *Record, field CarryField) error {
	c, ok := carryTable[field]
	if !ok {
		return ErrNotCarryable
	}
	if current == nil || current.Nurse == nil {
		return ErrNotCarryable
	}
	if last == nil {
		return ErrNoPreviousVisit
	}
	if last.Nurse == nil || !c.present(last.Nurse) {
		return ErrNoPreviousData
	}
	c.copy(current.Nurse, last.Nurse)
	return nil
}

// PrefillHeight sets the vitals height from the patient's last recorded
// height when the form has none.
func PrefillHeight(r *Record, height string) {
	v := r.VitalSigns()
	if v == nil || v.Height != "" {
		return
	}
	v.Height = height
}
