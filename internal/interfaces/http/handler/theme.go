package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/dto"
)

// ThemeHandler reads and persists the accent theme
type ThemeHandler struct {
	BaseHandler
	session Session
}

// NewThemeHandler creates a new ThemeHandler
func NewThemeHandler(s Session) *ThemeHandler {
	return &ThemeHandler{session: s}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ThemeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/theme", h.Get)
	rg.PUT("/theme", h.Set)
	rg.GET("/themes", h.List)
}

// Get returns the active theme
// GET /api/v1/theme
func (h *ThemeHandler) Get(c *gin.Context) {
	h.Success(c, h.session.Theme(c.Request.Context()))
}

// Set persists a theme
// PUT /api/v1/theme
func (h *ThemeHandler) Set(c *gin.Context) {
	var req dto.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	t, err := h.session.SetTheme(c.Request.Context(), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// List returns the selectable themes
// GET /api/v1/themes
func (h *ThemeHandler) List(c *gin.Context) {
	h.Success(c, session.Themes())
}
