package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/dto"
)

// DataHandler relays the per-company datasets that views load on demand
type DataHandler struct {
	BaseHandler
	session Session
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(s Session) *DataHandler {
	return &DataHandler{session: s}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *DataHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.Chat)
	rg.GET("/cfdis", h.CFDIs)
	rg.GET("/predictions", h.Predictions)
	rg.GET("/credit", h.Credit)
}

// Chat asks the CFO advisor about the current company
// POST /api/v1/chat
func (h *DataHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	reply, err := h.session.SendChatMessage(c.Request.Context(), req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reply)
}

// CFDIs pages through invoices of the current company
// GET /api/v1/cfdis?page=&per_page=&tipo=
func (h *DataHandler) CFDIs(c *gin.Context) {
	var q dto.CFDIQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	page, err := h.session.CFDIs(c.Request.Context(), q.Page, q.PerPage, dashboard.CFDIType(q.Tipo))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Predictions relays the projections payload
// GET /api/v1/predictions
func (h *DataHandler) Predictions(c *gin.Context) {
	p, err := h.session.Predictions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Credit relays the credit readiness payload
// GET /api/v1/credit
func (h *DataHandler) Credit(c *gin.Context) {
	info, err := h.session.Credit(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
