package records

import (
	"net/http"
	"time"

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
	api.POST("/medical-records/lab-reports", h.AddLabReport, auth.RequireRole(auth.RoleDoctor))
	api.GET("/medical-records", h.List, auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	api.GET("/medical-records/:id", h.Get, auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	api.GET("/patients/:id/medical-records", h.ListForPatient, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

type labReportRequest struct {
	PatientID uuid.UUID         `json:"patient_id"`
	Date      string            `json:"date"`
	TestName  *string           `json:"test_name"`
	Results   map[string]string `json:"results"`
	Status    *string           `json:"status"`
	LabName   *string           `json:"lab_name"`
	Notes     *string           `json:"notes"`
}

func (h *Handler) AddLabReport(c echo.Context) error {
	var req labReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	actor, _ := auth.ActorFromContext(c.Request().Context())
	rec := &MedicalRecord{
		PatientID: req.PatientID,
		Date:      date,
		TestName:  req.TestName,
		Results:   req.Results,
		Status:    req.Status,
		LabName:   req.LabName,
		Notes:     req.Notes,
	}
	if err := h.svc.AddLabReport(c.Request().Context(), actor, rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	rec, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
	}
	return c.JSON(http.StatusOK, rec)
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

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForPatient(c.Request().Context(), actor, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
