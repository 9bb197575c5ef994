package visit

import (
	"errors"
	"testing"

	"github.com/poshable/visitlog/internal/platform/apperr"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		wantErr  error
	}{
		{"", StatusDraft, nil},
		{"", StatusCompleted, nil},
		{StatusDraft, StatusDraft, nil},
		{StatusDraft, StatusCompleted, nil},
		{StatusCompleted, StatusCompleted, nil},
		{StatusCompleted, StatusDraft, apperr.ErrConflict},
		{StatusDraft, "archived", apperr.ErrValidation},
	}
	for _, tt := range tests {
		err := Transition(tt.from, tt.to)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%q -> %q: unexpected error %v", tt.from, tt.to, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%q -> %q: expected %v, got %v", tt.from, tt.to, tt.wantErr, err)
		}
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Jane Doe":          "JD",
		"mary ann smith":    "MAS",
		"  Ola   Nordmann ": "ON",
		"":                  "",
		"Élodie Ünal":       "ÉÜ",
	}
	for name, want := range tests {
		if got := Initials(name); got != want {
			t.Errorf("Initials(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSignDailyNote_AppendsOnce(t *testing.T) {
	once := SignDailyNote("  Ate breakfast, went for a walk.  ", "Jane Doe")
	if once != "Ate breakfast, went for a walk. -JD" {
		t.Fatalf("unexpected signed note %q", once)
	}
	if twice := SignDailyNote(once, "Jane Doe"); twice != once {
		t.Errorf("initials appended twice: %q", twice)
	}
	if got := SignDailyNote("", "Jane Doe"); got != "" {
		t.Errorf("empty note should stay empty, got %q", got)
	}
	if got := SignDailyNote("note", ""); got != "note" {
		t.Errorf("no author initials, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	nurse, _ := New(TypeNurseVisit)
	nurse.Status = StatusCompleted
	if err := Validate(nurse); apperr.FieldOf(err) != "visit_date" {
		t.Errorf("expected visit_date error, got %v", err)
	}

	nurse.Date = mustDate("2024-03-05")
	if err := Validate(nurse); apperr.FieldOf(err) != "screening_completed_by" {
		t.Errorf("expected screening_completed_by error, got %v", err)
	}

	nurse.ScreeningCompletedBy = "Jane Doe, RN"
	nurse.Nurse.OverallHealthStatus = "Great"
	if err := Validate(nurse); apperr.FieldOf(err) != "overall_health_status" {
		t.Errorf("expected overall_health_status error, got %v", err)
	}

	nurse.Nurse.OverallHealthStatus = HealthNeedsAttention
	if err := Validate(nurse); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	daily, _ := New(TypeDailyNote)
	daily.Date = mustDate("2024-03-05")
	if err := Validate(daily); err != nil {
		t.Errorf("daily note needs only a date, got %v", err)
	}
}
