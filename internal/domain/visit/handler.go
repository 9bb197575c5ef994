package visit

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/visits/session", h.StartSession)
	api.GET("/patients/:id/visits/drafts", h.Drafts)
	api.GET("/patients/:id/visits/last", h.Last)
	api.GET("/patients/:id/visits", h.List)
	api.POST("/patients/:id/visits", h.Create)

	api.POST("/visits/pull-from-last", h.PullFromLast)
	api.POST("/visits/vitals/check", h.CheckVitals)
	api.GET("/visits/:id", h.Get)
	api.PUT("/visits/:id", h.Update)
	api.DELETE("/visits/:id", h.Delete)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) StartSession(c echo.Context) error {
	patientID, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.StartSession(c.Request().Context(), actor, patientID, req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) Drafts(c echo.Context) error {
	patientID, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	drafts, err := h.svc.Drafts(c.Request().Context(), actor, patientID, Type(c.QueryParam("visit_type")))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, drafts)
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	var rec Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	saved, err := h.svc.Submit(c.Request().Context(), actor, patientID, &rec)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) List(c echo.Context) error {
	patientID, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	filter := ListFilter{Type: Type(c.QueryParam("visit_type")), Status: Status(c.QueryParam("status"))}
	visits, total, err := h.svc.List(c.Request().Context(), actor, patientID, filter, p.Limit, p.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, p.Limit, p.Offset))
}

func (h *Handler) Last(c echo.Context) error {
	patientID, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Last(c.Request().Context(), actor, patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	var rec Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	saved, err := h.svc.Update(c.Request().Context(), actor, id, &rec)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Visit deleted"})
}

type pullRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Section   string    `json:"section"`
	Field     string    `json:"field"`
	Record    Record    `json:"record"`
}

type pullResponse struct {
	Record  *Record `json:"record"`
	Pulled  bool    `json:"pulled"`
	Message string  `json:"message,omitempty"`
}

// PullFromLast answers 200 whether or not a value was found; a missing
// previous visit or field is reported in the body.
func (h *Handler) PullFromLast(c echo.Context) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	var req pullRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	field, err := ParseCarryField(req.Section, req.Field)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Record.Type != TypeNurseVisit {
		return echo.NewHTTPError(http.StatusBadRequest, ErrNotCarryable.Error())
	}

	rec, err := h.svc.PullFromLast(c.Request().Context(), actor, req.PatientID, &req.Record, field)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, pullResponse{Record: rec, Pulled: true})
	case errors.Is(err, ErrNoPreviousVisit), errors.Is(err, ErrNoPreviousData):
		return c.JSON(http.StatusOK, pullResponse{Record: rec, Message: err.Error()})
	default:
		return apperr.ToHTTP(err)
	}
}

func (h *Handler) CheckVitals(c echo.Context) error {
	var v VitalSigns
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.CheckVitals(v))
}
