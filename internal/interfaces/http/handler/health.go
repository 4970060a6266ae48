package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarxCha/poa-dashboard/internal/application/loader"
)

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Auth    string `json:"auth"`
	Backend string `json:"backend"`
}

// Health reports liveness. The process is healthy even when the POA
// backend is not; that is reported in the body only.
func Health(s Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.Snapshot()
		backend := "unknown"
		switch snap.Status {
		case loader.StatusReady, loader.StatusEmptyDataset:
			backend = "reachable"
		case loader.StatusBackendUnavailable:
			backend = "unavailable"
		}
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Auth:    string(snap.AuthState.Status),
			Backend: backend,
		})
	}
}
