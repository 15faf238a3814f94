package prescribing

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medisphere/portal/internal/domain/consultation"
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
	api.POST("/prescriptions", h.Create, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions", h.List, auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RolePharmacist, auth.RoleAdmin))
	api.GET("/prescriptions/:id", h.Get, auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RolePharmacist, auth.RoleAdmin))
}

type createRequest struct {
	ConsultationID uuid.UUID    `json:"consultation_id"`
	Diagnosis      string       `json:"diagnosis"`
	Date           string       `json:"date"`
	Medications    []Medication `json:"medications"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ConsultationID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "consultation_id is required")
	}

	rx := &Prescription{
		Diagnosis:   req.Diagnosis,
		Medications: req.Medications,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		rx.Date = date
	}

	actor, _ := auth.ActorFromContext(c.Request().Context())
	err := h.svc.Create(c.Request().Context(), actor, req.ConsultationID, rx)
	switch {
	case err == consultation.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	case err == ErrNoMedications:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rx)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	rx, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}
	return c.JSON(http.StatusOK, rx)
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
