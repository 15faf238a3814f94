package consultation

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medisphere/portal/internal/domain/scheduling"
	"github.com/medisphere/portal/internal/platform/auth"
	"github.com/medisphere/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/consultations", h.Start, auth.RequireRole(auth.RoleDoctor))
	api.PUT("/consultations/:id/end", h.End, auth.RequireRole(auth.RoleDoctor))
	api.GET("/consultations", h.List, auth.RequireRole(auth.RoleDoctor, auth.RolePatient, auth.RoleAdmin))
	api.GET("/consultations/:id", h.Get, auth.RequireRole(auth.RoleDoctor, auth.RolePatient, auth.RoleAdmin))
}

type startRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
}

func (h *Handler) Start(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AppointmentID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment_id is required")
	}

	actor, _ := auth.ActorFromContext(c.Request().Context())
	consult, err := h.svc.Start(c.Request().Context(), actor, req.AppointmentID)
	switch {
	case err == scheduling.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case err == ErrConsultationExists:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err == scheduling.ErrInvalidTransition:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, consult)
}

type endRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) End(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req endRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, _ := auth.ActorFromContext(c.Request().Context())
	consult, err := h.svc.End(c.Request().Context(), actor, id, req.Notes)
	switch {
	case err == ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	case err == scheduling.ErrInvalidTransition:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, consult)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	consult, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	}
	return c.JSON(http.StatusOK, consult)
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.ActorFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForActor(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
