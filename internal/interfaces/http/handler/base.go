package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/application/orchestrator"
	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/logger"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/dto"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/middleware"
)

// Session is the controller the handlers drive
type Session interface {
	Snapshot() orchestrator.Snapshot
	Login(ctx context.Context, creds session.Credentials) (session.AuthUser, error)
	Register(ctx context.Context, p session.Profile) (session.AuthUser, error)
	SkipAuth(ctx context.Context) (session.AuthState, error)
	Logout(ctx context.Context) (session.AuthState, error)
	CurrentUser(ctx context.Context) (session.AuthUser, error)
	ChangeScenario(ctx context.Context, s dashboard.Scenario) error
	Seed(ctx context.Context, s dashboard.Scenario) error
	Reload(ctx context.Context) error
	Navigate(view session.ViewID) bool
	StartVoice(ctx context.Context) error
	StopVoice()
	SendChatMessage(ctx context.Context, message string) (*dashboard.ChatReply, error)
	CFDIs(ctx context.Context, page, perPage int, tipo dashboard.CFDIType) (*dashboard.CFDIPage, error)
	Predictions(ctx context.Context) (dashboard.Predictions, error)
	Credit(ctx context.Context) (dashboard.CreditInfo, error)
	Theme(ctx context.Context) session.Theme
	SetTheme(ctx context.Context, id string) (session.Theme, error)
}

var _ Session = (*orchestrator.Orchestrator)(nil)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("unexpected handler error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
