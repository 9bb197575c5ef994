package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/domain/admin"
	"github.com/poshable/visitlog/internal/domain/contact"
	"github.com/poshable/visitlog/internal/domain/intervention"
	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/staff"
	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/pkg/caldate"
)

const (
	demoAdminEmail = "admin@poshable.demo"
	demoNurseEmail = "nurse@poshable.demo"
	demoPassword   = "poshable-demo"
)

var demoOrganizations = []string{"Jericho Residential", "Maple Grove Homes"}

// demoVisit is one seeded visit for the patient at index Patient.
type demoVisit struct {
	Patient int
	Record  *visit.Record
}

func daysAgo(today caldate.Date, n int) caldate.Date {
	return caldate.Of(today.Time(time.UTC).AddDate(0, 0, -n))
}

// demoVisits builds a nurse visit, a vitals check and a daily note per
// patient, dated in the days before today. The first patient's nurse visit
// carries an abnormal blood pressure.
func demoVisits(today caldate.Date, patients int) []demoVisit {
	var out []demoVisit
	for i := 0; i < patients; i++ {
		nurse, _ := visit.New(visit.TypeNurseVisit)
		nurse.Date = daysAgo(today, 6+i)
		nurse.Nurse.NurseVisitType = "Routine"
		nurse.Nurse.VisitLocation = "Home"
		nurse.Nurse.VitalSigns = visit.VitalSigns{
			Height:                 "5'6\"",
			Weight:                 "162",
			BodyTemperature:        "98.4",
			BloodPressureSystolic:  "128",
			BloodPressureDiastolic: "82",
			PulseOximeter:          "97",
			Pulse:                  "74",
			Respirations:           "16",
		}
		if i == 0 {
			nurse.Nurse.VitalSigns.BloodPressureSystolic = "152"
			nurse.Nurse.VitalSigns.BloodPressureDiastolic = "94"
		}
		nurse.Nurse.OverallHealthStatus = visit.HealthStable
		nurse.Nurse.NurseNotes = "Routine monthly assessment. No new complaints."

		vitals, _ := visit.New(visit.TypeVitalsOnly)
		vitals.Date = daysAgo(today, 3+i)
		vitals.Vitals.VitalSigns = visit.VitalSigns{
			Weight:                 "161",
			BodyTemperature:        "98.1",
			BloodPressureSystolic:  "124",
			BloodPressureDiastolic: "80",
			PulseOximeter:          "98",
			Pulse:                  "70",
			Respirations:           "15",
		}
		vitals.Vitals.OverallHealthStatus = visit.HealthStable

		daily, _ := visit.New(visit.TypeDailyNote)
		daily.Date = daysAgo(today, 1)
		daily.Daily.DailyNoteContent = "Attended day program. Ate well and slept through the night."

		out = append(out,
			demoVisit{Patient: i, Record: nurse},
			demoVisit{Patient: i, Record: vitals},
			demoVisit{Patient: i, Record: daily},
		)
	}
	return out
}

func seedDemo(ctx context.Context, app *services, loc *time.Location, logger zerolog.Logger) error {
	adminMember, err := app.createAdmin(ctx, staff.RegisterRequest{
		Email:    demoAdminEmail,
		Password: demoPassword,
		FullName: "Avery Admin",
		Title:    staff.TitleBSN,
	})
	if errors.Is(err, apperr.ErrValidation) && apperr.FieldOf(err) == "email" {
		logger.Info().Msg("demo data already present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create demo admin: %w", err)
	}
	adminActor := adminMember.Actor()

	nurseResp, err := app.staff.Register(ctx, staff.RegisterRequest{
		Email:    demoNurseEmail,
		Password: demoPassword,
		FullName: "Nina Nurse",
		Title:    staff.TitleRN,
	})
	if err != nil {
		return fmt.Errorf("create demo nurse: %w", err)
	}
	nurse := nurseResp.Nurse

	for _, name := range demoOrganizations {
		if err := app.admin.CreateOrganization(ctx, &admin.Organization{Name: name}); err != nil {
			return fmt.Errorf("create organization %s: %w", name, err)
		}
	}
	programAddress := "14 Elm Street, Jericho, VT 05465"
	if err := app.admin.CreateDayProgram(ctx, &admin.DayProgram{Name: "Sunrise Adult Day", Address: &programAddress}); err != nil {
		return fmt.Errorf("create day program: %w", err)
	}

	requests := []patient.CreateRequest{
		{
			FullName:     "Jane Doe",
			Organization: demoOrganizations[0],
			PermanentInfo: patient.PermanentInfo{
				Gender:                 "Female",
				DateOfBirth:            "1958-04-12",
				Height:                 "5'6\"",
				AttendsAdultDayProgram: true,
				AdultDayProgramName:    "Sunrise Adult Day",
				Medications:            []string{"Lisinopril 10mg"},
				Allergies:              []string{"Penicillin"},
				MedicalDiagnoses:       []string{"Hypertension"},
				VisitFrequency:         "Monthly",
			},
		},
		{
			FullName:     "John Roe",
			Organization: demoOrganizations[1],
			PermanentInfo: patient.PermanentInfo{
				Gender:           "Male",
				DateOfBirth:      "1964-09-30",
				MedicalDiagnoses: []string{"Type 2 diabetes"},
				VisitFrequency:   "Bi-weekly",
			},
		},
	}
	var patientIDs []uuid.UUID
	for _, req := range requests {
		p, err := app.patients.Create(ctx, adminActor, req)
		if err != nil {
			return fmt.Errorf("create patient %s: %w", req.FullName, err)
		}
		if _, err := app.patients.AssignNurses(ctx, p.ID, []uuid.UUID{adminMember.ID, nurse.ID}); err != nil {
			return fmt.Errorf("assign patient %s: %w", req.FullName, err)
		}
		patientIDs = append(patientIDs, p.ID)
	}
	if _, err := app.staff.SetAssignments(ctx, nurse.ID, staff.Assignments{
		AssignedPatients:      patientIDs,
		AssignedOrganizations: demoOrganizations,
	}); err != nil {
		return fmt.Errorf("assign demo nurse: %w", err)
	}

	nurseActor := nurse.Actor()
	today := caldate.Today(loc)
	for _, dv := range demoVisits(today, len(patientIDs)) {
		if _, err := app.visits.Submit(ctx, nurseActor, patientIDs[dv.Patient], dv.Record); err != nil {
			return fmt.Errorf("create %s visit: %w", dv.Record.Type, err)
		}
	}

	if _, err := app.interventions.Create(ctx, nurseActor, &intervention.Record{
		PatientID:               patientIDs[0],
		Date:                    daysAgo(today, 2),
		Location:                intervention.LocationHome,
		Type:                    intervention.TypeInjection,
		VerifiedPatientIdentity: true,
		DonnedProperPPE:         true,
		Injection: &intervention.InjectionDetails{
			IsVaccination:              true,
			VaccinationType:            "Flu",
			VerifiedNoAllergicReaction: true,
			CleanedInjectionSite:       true,
			Adhered8Rights:             true,
		},
	}); err != nil {
		return fmt.Errorf("create intervention: %w", err)
	}

	if _, err := app.contacts.Create(ctx, nurseActor, &contact.Record{
		PatientID:          patientIDs[1],
		VisitType:          string(visit.TypeNurseVisit),
		AttemptDate:        daysAgo(today, 4),
		AttemptLocation:    contact.AttemptHome,
		IndividualLocation: contact.LocationOuting,
	}); err != nil {
		return fmt.Errorf("create unable-to-contact record: %w", err)
	}

	logger.Info().
		Str("admin", demoAdminEmail).
		Str("nurse", demoNurseEmail).
		Int("patients", len(patientIDs)).
		Msg("demo data loaded")
	return nil
}
