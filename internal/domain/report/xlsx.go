package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/poshable/visitlog/internal/domain/visit"
)

const (
	visitsSheet  = "Visits"
	summarySheet = "Summary"

	// XLSXContentType is the MIME type of WriteXLSX output.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var visitColumns = []struct {
	header string
	width  float64
}{
	{"Date", 12},
	{"Patient", 22},
	{"Organization", 20},
	{"Visit Type", 16},
	{"Status", 11},
	{"Weight", 9},
	{"Height", 9},
	{"Temp", 8},
	{"BP", 10},
	{"Pulse Ox", 9},
	{"Pulse", 8},
	{"Resp", 8},
	{"BP Abnormal", 12},
	{"Notes", 60},
}

// WriteXLSX writes rep as a workbook with one row per visit and a summary
// sheet.
func WriteXLSX(w io.Writer, rep *Monthly, h Heading) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", visitsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	headers := make([]interface{}, len(visitColumns))
	for i, col := range visitColumns {
		headers[i] = col.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(visitsSheet, name, name, col.width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	if err := f.SetSheetRow(visitsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(visitColumns), 1)
	if err := f.SetCellStyle(visitsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range rep.Visits {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := visitRow(e)
		if err := f.SetSheetRow(visitsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := writeSummary(f, rep, h, headerStyle); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func visitRow(e *Entry) []interface{} {
	var v visit.VitalSigns
	if vs := e.VitalSigns(); vs != nil {
		v = *vs
	}
	bp := ""
	if v.BloodPressureSystolic != "" || v.BloodPressureDiastolic != "" {
		bp = v.BloodPressureSystolic + "/" + v.BloodPressureDiastolic
	}
	abnormal := ""
	if v.BPAbnormal {
		abnormal = "Yes"
	}
	return []interface{}{
		e.Date.US(), e.PatientName, e.Organization, e.Type.Label(), string(e.Status),
		v.Weight, v.Height, v.BodyTemperature, bp, v.PulseOximeter, v.Pulse, v.Respirations,
		abnormal, e.Notes(),
	}
}

func writeSummary(f *excelize.File, rep *Monthly, h Heading, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	s := rep.Summary
	rows := [][]interface{}{
		{h.Title(), h.Patient()},
		{"Period", h.Period()},
		{"Start Date", s.StartDate.US()},
		{"End Date", s.EndDate.US()},
		{"Total Visits", s.TotalVisits},
		{"Unique Patients", s.UniquePatients},
		{"Nurse Visits", s.NurseVisits},
		{"Vitals Only", s.VitalsOnly},
		{"Daily Notes", s.DailyNotes},
		{},
		{"Organization", "Visits"},
	}
	for _, org := range sortedKeys(s.ByOrganization) {
		rows = append(rows, []interface{}{org, s.ByOrganization[org]})
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A11", "B11", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}
