package pharmacy

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	api.GET("/orders", h.List, auth.RequireRole(auth.RolePharmacist, auth.RolePatient, auth.RoleAdmin))
	api.GET("/orders/:id", h.Get, auth.RequireRole(auth.RolePharmacist, auth.RolePatient, auth.RoleAdmin))
	api.PUT("/orders/:id/claim", h.Claim, auth.RequireRole(auth.RolePharmacist))
	api.PUT("/orders/:id/process", h.Process, auth.RequireRole(auth.RolePharmacist))
	api.PUT("/orders/:id/complete", h.Complete, auth.RequireRole(auth.RolePharmacist))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	o, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, o)
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

func (h *Handler) Claim(c echo.Context) error {
	return h.advance(c, h.svc.Claim)
}

func (h *Handler) Process(c echo.Context) error {
	return h.advance(c, h.svc.Process)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.advance(c, h.svc.Complete)
}

func (h *Handler) advance(c echo.Context, step func(ctx context.Context, actor auth.Actor, id uuid.UUID) (*PrescriptionOrder, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	o, err := step(c.Request().Context(), actor, id)
	switch {
	case err == ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case err == ErrAlreadyClaimed || err == ErrNotOrderOwner:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err == ErrInvalidOrderState:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}
