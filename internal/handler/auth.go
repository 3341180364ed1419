package handler

import (
	"net/http"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid username or password"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if apierror.KindOf(err) == apierror.KindStorage {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Users Handler ─────────────────────────────────────────────────────────────

type UsersHandler struct{ svc service.AuthService }

func NewUsersHandler(svc service.AuthService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// Upsert godoc
// @Summary Create or update a user
// @Description Creates the user when id is absent. The password is hashed with bcrypt and must be at least 6 characters.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpsertUserRequest true "User"
// @Success 200 {object} dto.UserProfile
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/users [post]
func (h *UsersHandler) Upsert(c *gin.Context) {
	var req dto.UpsertUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := middleware.CurrentUserID(c)
	resp, err := h.svc.UpsertUser(c.Request.Context(), &actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if req.ID == nil {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "Include deactivated users"
// @Success 200 {array} dto.UserProfile
// @Router /v1/users [get]
func (h *UsersHandler) List(c *gin.Context) {
	resp, err := h.svc.ListUsers(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
