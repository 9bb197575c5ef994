package report

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/monthly", h.Monthly)
	api.POST("/reports/monthly/pdf", h.MonthlyPDF)
	api.POST("/reports/monthly/xlsx", h.MonthlyXLSX)
	api.GET("/patients/:id/daily-notes", h.DailyNotes)
	api.GET("/visits/:id/pdf", h.VisitPDF)
}

// monthlyRequest is the wire form of Request. patient_id may be empty or
// "all" to cover every patient.
type monthlyRequest struct {
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	VisitType    visit.Type `json:"visit_type"`
	PatientID    string     `json:"patient_id"`
	Organization string     `json:"organization"`
}

func bindRequest(c echo.Context) (Request, error) {
	var body monthlyRequest
	if err := c.Bind(&body); err != nil {
		return Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req := Request{
		Year:         body.Year,
		Month:        time.Month(body.Month),
		VisitType:    body.VisitType,
		Organization: strings.TrimSpace(body.Organization),
	}
	if pid := strings.TrimSpace(body.PatientID); pid != "" && pid != "all" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return Request{}, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		req.PatientID = &id
	}
	return req, nil
}

func (h *Handler) Monthly(c echo.Context) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	req, err := bindRequest(c)
	if err != nil {
		return err
	}
	rep, err := h.svc.Monthly(c.Request().Context(), actor, req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) MonthlyPDF(c echo.Context) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	req, err := bindRequest(c)
	if err != nil {
		return err
	}
	f, err := h.svc.MonthlyPDF(c.Request().Context(), actor, req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return attachment(c, f)
}

func (h *Handler) MonthlyXLSX(c echo.Context) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	req, err := bindRequest(c)
	if err != nil {
		return err
	}
	f, err := h.svc.MonthlyXLSX(c.Request().Context(), actor, req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return attachment(c, f)
}

func (h *Handler) DailyNotes(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	year, err := queryInt(c, "year")
	if err != nil {
		return err
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return err
	}
	notes, err := h.svc.DailyNotes(c.Request().Context(), actor, patientID, year, time.Month(month))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *Handler) VisitPDF(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	f, err := h.svc.VisitPDF(c.Request().Context(), actor, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return attachment(c, f)
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func attachment(c echo.Context, f *File) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return c.Blob(http.StatusOK, f.ContentType, f.Body)
}
