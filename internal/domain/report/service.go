package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/internal/platform/metrics"
	"github.com/poshable/visitlog/internal/platform/printdoc"
	"github.com/poshable/visitlog/pkg/caldate"
)

// Visits is the part of the visit service reports read from.
type Visits interface {
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*visit.Record, error)
	Range(ctx context.Context, filter visit.RangeFilter) ([]*visit.Record, error)
}

type Patients interface {
	Access(ctx context.Context, actor auth.Actor, id uuid.UUID, denied string) (*patient.Patient, error)
	Lookup(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type Service struct {
	visits   Visits
	patients Patients
	renderer printdoc.Renderer
	measurer printdoc.Measurer
	loc      *time.Location
	now      func() time.Time
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

func NewService(visits Visits, patients Patients, renderer printdoc.Renderer, measurer printdoc.Measurer, loc *time.Location, m *metrics.Collector, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		visits:   visits,
		patients: patients,
		renderer: renderer,
		measurer: measurer,
		loc:      loc,
		now:      time.Now,
		metrics:  m,
		logger:   logger.With().Str("component", "report").Logger(),
	}
}

func (s *Service) today() caldate.Date {
	return caldate.Of(s.now().In(s.loc))
}

func (s *Service) generatedAt() string {
	return s.now().In(s.loc).Format("01/02/2006, 3:04:05 PM")
}

// Monthly aggregates the actor's visits in the requested month.
func (s *Service) Monthly(ctx context.Context, actor auth.Actor, req Request) (*Monthly, error) {
	start := s.now()
	rep, _, err := s.monthly(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	s.metrics.ReportGenerated("json", s.now().Sub(start))
	return rep, nil
}

func (s *Service) monthly(ctx context.Context, actor auth.Actor, req Request) (*Monthly, Heading, error) {
	h := Heading{Type: req.VisitType, Year: req.Year, Month: req.Month}
	if err := req.Validate(); err != nil {
		return nil, h, err
	}
	from, to := Period(req.Year, req.Month, s.today())

	nurseID := actor.ID
	visits, err := s.visits.Range(ctx, visit.RangeFilter{
		From:         from,
		To:           to,
		Type:         req.VisitType,
		PatientID:    req.PatientID,
		NurseID:      &nurseID,
		Organization: req.Organization,
	})
	if err != nil {
		return nil, h, fmt.Errorf("list visits: %w", err)
	}

	patients := s.resolvePatients(ctx, visits)
	if req.PatientID != nil {
		h.PatientName = s.patientName(ctx, *req.PatientID, patients)
	}
	return Aggregate(visits, patients, from, to), h, nil
}

// resolvePatients loads every patient referenced by visits. Failures are
// logged and leave the patient out, so its visits show as Unknown.
func (s *Service) resolvePatients(ctx context.Context, visits []*visit.Record) map[uuid.UUID]*patient.Patient {
	out := make(map[uuid.UUID]*patient.Patient)
	for _, v := range visits {
		if _, done := out[v.PatientID]; done {
			continue
		}
		p, err := s.patients.Lookup(ctx, v.PatientID)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", v.PatientID.String()).Msg("report patient lookup failed")
			out[v.PatientID] = nil
			continue
		}
		out[v.PatientID] = p
	}
	return out
}

func (s *Service) patientName(ctx context.Context, id uuid.UUID, known map[uuid.UUID]*patient.Patient) string {
	if p := known[id]; p != nil {
		return p.FullName
	}
	p, err := s.patients.Lookup(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id.String()).Msg("report heading lookup failed")
		return unknownPatient
	}
	return p.FullName
}

// MonthlyPDF renders the monthly report as a paginated PDF.
func (s *Service) MonthlyPDF(ctx context.Context, actor auth.Actor, req Request) (*File, error) {
	start := s.now()
	rep, h, err := s.monthly(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	doc := LayoutMonthly(s.measurer, rep, h, s.generatedAt())
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, doc); err != nil {
		return nil, err
	}
	s.metrics.ReportGenerated("pdf", s.now().Sub(start))
	return &File{Name: Filename(h, ".pdf"), ContentType: s.renderer.ContentType(), Body: buf.Bytes()}, nil
}

// MonthlyXLSX exports the monthly report's visits as a workbook.
func (s *Service) MonthlyXLSX(ctx context.Context, actor auth.Actor, req Request) (*File, error) {
	start := s.now()
	rep, h, err := s.monthly(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rep, h); err != nil {
		return nil, err
	}
	s.metrics.ReportGenerated("xlsx", s.now().Sub(start))
	return &File{Name: Filename(h, ".xlsx"), ContentType: XLSXContentType, Body: buf.Bytes()}, nil
}

// DailyNotes lists a patient's daily notes for a month from every author.
// A zero year or month means the current one.
func (s *Service) DailyNotes(ctx context.Context, actor auth.Actor, patientID uuid.UUID, year int, month time.Month) (*DailyNotes, error) {
	today := s.today()
	if year == 0 {
		year = today.Year
	}
	if month == 0 {
		month = today.Month
	}
	if err := (Request{Year: year, Month: month}).Validate(); err != nil {
		return nil, err
	}
	p, err := s.patients.Access(ctx, actor, patientID, "Not authorized to view this patient's visits")
	if err != nil {
		return nil, err
	}

	from, to := caldate.MonthBounds(year, month)
	visits, err := s.visits.Range(ctx, visit.RangeFilter{
		From:      from,
		To:        to,
		Type:      visit.TypeDailyNote,
		PatientID: &patientID,
	})
	if err != nil {
		return nil, fmt.Errorf("list daily notes: %w", err)
	}
	rep := Aggregate(visits, map[uuid.UUID]*patient.Patient{patientID: p}, from, to)
	return &DailyNotes{
		PatientID:   patientID,
		PatientName: p.FullName,
		Period:      rep.Summary.Period,
		StartDate:   from,
		EndDate:     to,
		Notes:       rep.VisitsByType.DailyNote,
	}, nil
}

// VisitPDF renders one visit the actor may view.
func (s *Service) VisitPDF(ctx context.Context, actor auth.Actor, id uuid.UUID) (*File, error) {
	start := s.now()
	rec, err := s.visits.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	pat, err := s.patients.Lookup(ctx, rec.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("visit_id", id.String()).Msg("visit pdf patient lookup failed")
		pat = nil
	}
	name := unknownPatient
	if pat != nil {
		name = pat.FullName
	}

	doc := LayoutVisit(s.measurer, rec, pat, s.generatedAt())
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, doc); err != nil {
		return nil, err
	}
	s.metrics.ReportGenerated("visit_pdf", s.now().Sub(start))
	return &File{Name: VisitFilename(name, rec.Date), ContentType: s.renderer.ContentType(), Body: buf.Bytes()}, nil
}
