package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/pkg/caldate"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		h    Heading
		ext  string
		want string
	}{
		{"daily one patient", Heading{Type: visit.TypeDailyNote, PatientName: "Jane Doe", Year: 2024, Month: time.March}, ".pdf", "DailyNotes_Jane_Doe_March2024.pdf"},
		{"vitals all patients", Heading{Type: visit.TypeVitalsOnly, Year: 2023, Month: time.December}, ".pdf", "VitalSigns_AllPatients_December2023.pdf"},
		{"any type", Heading{Year: 2024, Month: time.January, PatientName: "Mary  Ann Lee"}, ".xlsx", "NurseVisits_Mary__Ann_Lee_January2024.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.h, tt.ext))
		})
	}
}

func TestVisitFilename(t *testing.T) {
	assert.Equal(t, "visit_Jane_Doe_03-05-2024.pdf", VisitFilename(" Jane  Doe ", caldate.MustParse("2024-03-05")))
}
