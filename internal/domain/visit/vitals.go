package visit

import (
	"math"
	"strconv"
	"strings"
)

// BPThresholds is the normal blood pressure band. A reading is abnormal
// below the low bound or at or above the high bound.
type BPThresholds struct {
	SystolicLow   float64
	SystolicHigh  float64
	DiastolicLow  float64
	DiastolicHigh float64
}

func DefaultBPThresholds() BPThresholds {
	return BPThresholds{SystolicLow: 90, SystolicHigh: 140, DiastolicLow: 60, DiastolicHigh: 90}
}

// IsAbnormal reports whether either value lies outside the band. Empty or
// non-numeric values are never abnormal; each value is judged on its own.
func (t BPThresholds) IsAbnormal(systolic, diastolic string) bool {
	if s, ok := parseReading(systolic); ok && (s < t.SystolicLow || s >= t.SystolicHigh) {
		return true
	}
	if d, ok := parseReading(diastolic); ok && (d < t.DiastolicLow || d >= t.DiastolicHigh) {
		return true
	}
	return false
}

func parseReading(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ObserveBloodPressure evaluates the current reading and returns whether it
// is abnormal, which is when a repeat measurement should be prompted. The
// first abnormal reading sets BPAbnormal; nothing clears it afterwards.
func (v *VitalSigns) ObserveBloodPressure(t BPThresholds) (abnormal, raised bool) {
	abnormal = t.IsAbnormal(v.BloodPressureSystolic, v.BloodPressureDiastolic)
	if abnormal && !v.BPAbnormal {
		v.BPAbnormal = true
		raised = true
	}
	return abnormal, raised
}

// normalize clears repeat readings on a record that was never flagged.
func (v *VitalSigns) normalize() {
	if !v.BPAbnormal {
		v.RepeatBloodPressureSystolic = ""
		v.RepeatBloodPressureDiastolic = ""
	}
}

// CheckResult answers a vitals check from an entry form.
type CheckResult struct {
	VitalSigns   VitalSigns `json:"vital_signs"`
	Abnormal     bool       `json:"abnormal"`
	PromptRepeat bool       `json:"prompt_repeat"`
}
