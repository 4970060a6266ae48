package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/dto"
)

// AuthHandler handles sign-in, registration, demo mode and sign-out
type AuthHandler struct {
	BaseHandler
	session Session
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s Session) *AuthHandler {
	return &AuthHandler{session: s}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.Register)
	auth.POST("/skip", h.Skip)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	_, err := h.session.Login(c.Request.Context(), session.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}

// Register creates an account and signs in
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	_, err := h.session.Register(c.Request.Context(), session.Profile{
		Credentials: session.Credentials{Email: req.Email, Password: req.Password},
		FullName:    req.FullName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}

// Skip enters demo mode
// POST /api/v1/auth/skip
func (h *AuthHandler) Skip(c *gin.Context) {
	if _, err := h.session.SkipAuth(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}

// Logout signs out; the local session is cleared even when it reports an error
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, err := h.session.Logout(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}

// Me re-validates the signed-in account
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.session.CurrentUser(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
