package visit

import (
	"strconv"
	"testing"
)

func TestBPThresholds_IsAbnormal(t *testing.T) {
	th := DefaultBPThresholds()

	tests := []struct {
		name                string
		systolic, diastolic string
		want                bool
	}{
		{"normal", "120", "80", false},
		{"low edge normal", "90", "60", false},
		{"systolic high edge", "140", "80", true},
		{"diastolic high edge", "120", "90", true},
		{"systolic low", "89", "70", true},
		{"diastolic low", "110", "59", true},
		{"decimal", "139.5", "89.9", false},
		{"empty", "", "", false},
		{"garbage", "abc", "--", false},
		{"only systolic high", "180", "", true},
		{"only diastolic normal", "", "75", false},
		{"whitespace", " 150 ", "80", true},
		{"nan", "NaN", "Inf", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.IsAbnormal(tt.systolic, tt.diastolic); got != tt.want {
				t.Errorf("IsAbnormal(%q, %q) = %v, want %v", tt.systolic, tt.diastolic, got, tt.want)
			}
		})
	}
}

func TestBPThresholds_Monotonic(t *testing.T) {
	th := DefaultBPThresholds()
	itoa := strconv.Itoa

	// Moving further from the band than an abnormal reading stays abnormal.
	for s := 140; s <= 260; s += 5 {
		if !th.IsAbnormal(itoa(s), "80") {
			t.Errorf("systolic %d should be abnormal", s)
		}
	}
	for s := 89; s >= 40; s -= 7 {
		if !th.IsAbnormal(itoa(s), "80") {
			t.Errorf("systolic %d should be abnormal", s)
		}
	}
	for d := 90; d <= 160; d += 5 {
		if !th.IsAbnormal("120", itoa(d)) {
			t.Errorf("diastolic %d should be abnormal", d)
		}
	}
	for d := 59; d >= 20; d -= 3 {
		if !th.IsAbnormal("120", itoa(d)) {
			t.Errorf("diastolic %d should be abnormal", d)
		}
	}
}

func TestBPThresholds_Configurable(t *testing.T) {
	th := BPThresholds{SystolicLow: 100, SystolicHigh: 130, DiastolicLow: 65, DiastolicHigh: 85}
	if !th.IsAbnormal("135", "80") {
		t.Error("expected 135 to exceed a 130 limit")
	}
	if DefaultBPThresholds().IsAbnormal("135", "80") {
		t.Error("135 is within the default band")
	}
}

func TestObserveBloodPressure_Sticky(t *testing.T) {
	th := DefaultBPThresholds()
	v := VitalSigns{BloodPressureSystolic: "120", BloodPressureDiastolic: "80"}

	if abnormal, raised := v.ObserveBloodPressure(th); abnormal || raised || v.BPAbnormal {
		t.Fatal("normal reading must not flag")
	}

	v.BloodPressureSystolic = "165"
	abnormal, raised := v.ObserveBloodPressure(th)
	if !abnormal || !raised || !v.BPAbnormal {
		t.Fatal("expected the flag to be raised")
	}

	v.BloodPressureSystolic = "165"
	if _, raised := v.ObserveBloodPressure(th); raised {
		t.Error("flag must be raised only once")
	}

	v.BloodPressureSystolic = "118"
	abnormal, _ = v.ObserveBloodPressure(th)
	if abnormal {
		t.Error("current reading is normal")
	}
	if !v.BPAbnormal {
		t.Error("bp_abnormal must stay set after the reading returns to range")
	}
}

func TestVitalSigns_NormalizeClearsRepeatWhenNeverFlagged(t *testing.T) {
	v := VitalSigns{RepeatBloodPressureSystolic: "130", RepeatBloodPressureDiastolic: "85"}
	v.normalize()
	if v.RepeatBloodPressureSystolic != "" || v.RepeatBloodPressureDiastolic != "" {
		t.Error("expected repeat readings to be cleared")
	}

	v = VitalSigns{BPAbnormal: true, RepeatBloodPressureSystolic: "130"}
	v.normalize()
	if v.RepeatBloodPressureSystolic != "130" {
		t.Error("flagged record keeps its repeat reading")
	}
}
