package identity

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

// RegisterAuthRoutes mounts the public login and signup endpoints.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/signup", h.Signup)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/me", h.Me)
	api.PUT("/me", h.UpdateMe)

	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.DELETE("/users/:id", h.DeleteUser, auth.RequireRole(auth.RoleAdmin))

	api.GET("/patients", h.ListMyPatients, auth.RequireRole(auth.RoleDoctor))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err == ErrInvalidCredentials {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: u})
}

type signupRequest struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Specialty       *string  `json:"specialty,omitempty"`
	LicenseNumber   *string  `json:"license_number,omitempty"`
	DateOfBirth     *string  `json:"date_of_birth,omitempty"`
	BloodType       *string  `json:"blood_type,omitempty"`
	Allergies       []string `json:"allergies,omitempty"`
	Pharmacy        *string  `json:"pharmacy,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Address         *string  `json:"address,omitempty"`
}

func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}

	u := &User{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		Role:          req.Role,
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		BloodType:     req.BloodType,
		Allergies:     req.Allergies,
		Pharmacy:      req.Pharmacy,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		}
		u.DateOfBirth = &dob
	}

	token, err := h.svc.Signup(c.Request().Context(), u)
	if err == ErrDuplicateEmail {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: u})
}

func (h *Handler) Me(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	u, err := h.svc.Get(c.Request().Context(), actor.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return h.applyUpdate(c, actor.ID)
}

func (h *Handler) ListUsers(c echo.Context) error {
	actor, _ := auth.ActorFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListForActor(c.Request().Context(), actor, c.QueryParam("role"), pg.Limit, pg.Offset)
	if err == ErrForbidden {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	u, err := h.svc.GetForActor(c.Request().Context(), actor, id)
	if err == ErrForbidden {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	if !actor.IsAdmin() && actor.ID != id {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}
	return h.applyUpdate(c, id)
}

func (h *Handler) applyUpdate(c echo.Context, id uuid.UUID) error {
	var upd UserUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if upd.Password != nil && len(*upd.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}
	u, err := h.svc.Update(c.Request().Context(), id, &upd)
	if err == ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	err = h.svc.Delete(c.Request().Context(), actor, id)
	switch {
	case err == ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case err == ErrUserReferenced:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMyPatients(c echo.Context) error {
	actor, _ := auth.ActorFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.PatientsSeenBy(c.Request().Context(), actor.ID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}
