package admin

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	// Read endpoints - any signed-in staff member
	api.GET("/admin/organizations", h.ListOrganizations)
	api.GET("/admin/day-programs", h.ListDayPrograms)

	// Write endpoints - admin only
	writeGroup := api.Group("/admin", auth.RequireAdmin())
	writeGroup.POST("/organizations", h.CreateOrganization)
	writeGroup.PUT("/organizations/:id", h.UpdateOrganization)
	writeGroup.DELETE("/organizations/:id", h.DeleteOrganization)
	writeGroup.POST("/day-programs", h.CreateDayProgram)
	writeGroup.PUT("/day-programs/:id", h.UpdateDayProgram)
	writeGroup.DELETE("/day-programs/:id", h.DeleteDayProgram)

	api.POST("/incident-reports", h.FileIncident)
	api.GET("/incident-reports", h.ListIncidents)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Organization Handlers --

func (h *Handler) ListOrganizations(c echo.Context) error {
	orgs, err := h.svc.ListOrganizations(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, orgs)
}

func (h *Handler) CreateOrganization(c echo.Context) error {
	var org Organization
	if err := c.Bind(&org); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOrganization(c.Request().Context(), &org); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, org)
}

func (h *Handler) UpdateOrganization(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var org Organization
	if err := c.Bind(&org); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.UpdateOrganization(c.Request().Context(), id, &org)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteOrganization(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteOrganization(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Organization deleted successfully"})
}

// -- Day Program Handlers --

func (h *Handler) ListDayPrograms(c echo.Context) error {
	programs, err := h.svc.ListDayPrograms(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, programs)
}

func (h *Handler) CreateDayProgram(c echo.Context) error {
	var p DayProgram
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDayProgram(c.Request().Context(), &p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateDayProgram(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var p DayProgram
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.UpdateDayProgram(c.Request().Context(), id, &p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteDayProgram(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDayProgram(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Day program deleted successfully"})
}

// -- Incident Report Handlers --

func (h *Handler) FileIncident(c echo.Context) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}
	rep, err := h.svc.FileIncident(c.Request().Context(), actor, body)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Incident report created successfully",
		"id":      rep.ID.String(),
	})
}

func (h *Handler) ListIncidents(c echo.Context) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	reps, err := h.svc.Incidents(c.Request().Context(), actor)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, reps)
}
