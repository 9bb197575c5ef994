package report

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/pkg/caldate"
)

// fileToken names a report type in download filenames.
func fileToken(t visit.Type) string {
	switch t {
	case visit.TypeDailyNote:
		return "DailyNotes"
	case visit.TypeVitalsOnly:
		return "VitalSigns"
	}
	return "NurseVisits"
}

func underscored(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// Filename is the download name of a monthly report, for example
// DailyNotes_Jane_Doe_March2024.pdf. ext includes the dot.
func Filename(h Heading, ext string) string {
	who := "AllPatients"
	if h.PatientName != "" {
		who = underscored(h.PatientName)
	}
	return fmt.Sprintf("%s_%s_%s%d%s", fileToken(h.Type), who, h.Month, h.Year, ext)
}

// VisitFilename is the download name of a single visit's PDF.
func VisitFilename(patientName string, date caldate.Date) string {
	return fmt.Sprintf("visit_%s_%s.pdf", strings.Join(strings.Fields(patientName), "_"), strings.ReplaceAll(date.US(), "/", "-"))
}
