package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/dto"
)

// SessionHandler exposes the session snapshot, navigation and loads
type SessionHandler struct {
	BaseHandler
	session Session
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(s Session) *SessionHandler {
	return &SessionHandler{session: s}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/session", h.Get)
	rg.POST("/navigate", h.Navigate)
	rg.POST("/scenario", h.ChangeScenario)
	rg.POST("/seed", h.Seed)
	rg.POST("/reload", h.Reload)
}

// Get returns the session snapshot
// GET /api/v1/session
func (h *SessionHandler) Get(c *gin.Context) {
	h.Success(c, h.session.Snapshot())
}

// Navigate switches the active view; unknown views are ignored, not rejected
// POST /api/v1/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req dto.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	ok := h.session.Navigate(session.ViewID(req.View))
	h.Success(c, dto.NavigateResponse{
		Navigated:  ok,
		ActiveView: string(h.session.Snapshot().ActiveView),
	})
}

// ChangeScenario loads the first company of a scenario
// POST /api/v1/scenario
func (h *SessionHandler) ChangeScenario(c *gin.Context) {
	var req dto.ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	s, err := dashboard.ParseScenario(req.Scenario)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.session.ChangeScenario(c.Request.Context(), s); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}

// Seed creates demo data
// POST /api/v1/seed[?scenario=A|B|C]
func (h *SessionHandler) Seed(c *gin.Context) {
	var q dto.SeedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var s dashboard.Scenario
	if q.Scenario != "" {
		parsed, err := dashboard.ParseScenario(q.Scenario)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		s = parsed
	}
	if err := h.session.Seed(c.Request.Context(), s); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}

// Reload refreshes the current company
// POST /api/v1/reload
func (h *SessionHandler) Reload(c *gin.Context) {
	if err := h.session.Reload(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot())
}
