package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/dto"
)

// UtteranceSink receives final transcripts recognized by the client
type UtteranceSink interface {
	Push(text string) error
}

// VoiceHandler drives voice sessions. The browser performs speech-to-text
// and posts the final transcript as an utterance.
type VoiceHandler struct {
	BaseHandler
	session    Session
	utterances UtteranceSink
}

// NewVoiceHandler creates a new VoiceHandler. A nil sink disables the
// utterance endpoint.
func NewVoiceHandler(s Session, utterances UtteranceSink) *VoiceHandler {
	return &VoiceHandler{session: s, utterances: utterances}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *VoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	voice := rg.Group("/voice")
	voice.POST("/start", h.Start)
	voice.POST("/stop", h.Stop)
	if h.utterances != nil {
		voice.POST("/utterance", h.Utterance)
	}
}

// Start opens a listening session
// POST /api/v1/voice/start
func (h *VoiceHandler) Start(c *gin.Context) {
	if err := h.session.StartVoice(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.session.Snapshot().Voice)
}

// Stop ends the listening session; safe when idle
// POST /api/v1/voice/stop
func (h *VoiceHandler) Stop(c *gin.Context) {
	h.session.StopVoice()
	h.Success(c, h.session.Snapshot().Voice)
}

// Utterance delivers a transcript to the listening session
// POST /api/v1/voice/utterance
func (h *VoiceHandler) Utterance(c *gin.Context) {
	var req dto.UtteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if err := h.utterances.Push(req.Text); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"accepted": true})
}
