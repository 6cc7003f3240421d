package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/middleware"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
	"github.com/facultrack/attendance-backend/internal/validator"
)

// AuthHandler handles faculty authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates a faculty account and returns a signed token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// Login godoc
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Int("faculty_id", res.Faculty.ID).Str("ip", c.ClientIP()).Msg("Faculty logged in")
	response.Success(c, http.StatusOK, res)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated faculty.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := facultyID(c)
	if !ok {
		return
	}

	faculty, err := h.authService.Me(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faculty": faculty})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the session of the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.FacultyID, claims.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}
