// Package navigator tracks the active dashboard section.
package navigator

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
)

// HealthyScore is the health score from which a company is considered healthy
const HealthyScore = 70

// Metrics receives navigation events
type Metrics interface {
	Navigated(view string)
}

// Navigator owns ActiveView. It never touches loaded data.
type Navigator struct {
	mu      sync.RWMutex
	active  session.ViewID
	logger  *zap.Logger
	metrics Metrics
}

// New creates a navigator showing the default view
func New(logger *zap.Logger, metrics Metrics) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		active:  session.DefaultView,
		logger:  logger.Named("navigator"),
		metrics: metrics,
	}
}

// Active returns the current view
func (n *Navigator) Active() session.ViewID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active
}

// Navigate switches to view. Unknown ids are ignored and reported as false.
func (n *Navigator) Navigate(view session.ViewID) bool {
	if !view.IsKnown() {
		n.logger.Debug("ignoring unknown view", zap.String("view", string(view)))
		return false
	}

	n.mu.Lock()
	n.active = view
	n.mu.Unlock()

	if n.metrics != nil {
		n.metrics.Navigated(string(view))
	}
	return true
}

// Reset returns to the default view, used on sign-out
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = session.DefaultView
}

// Severity of a recommendation
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityPositive Severity = "positive"
)

// Recommendation is one banner link. Following it goes through Navigate.
type Recommendation struct {
	View     session.ViewID `json:"view"`
	Text     string         `json:"text"`
	Action   string         `json:"action"`
	Severity Severity       `json:"severity"`
}

// Recommendations derives the banner for the loaded stats. A nil stats
// yields no recommendations.
func Recommendations(stats *dashboard.DashboardStats) []Recommendation {
	if stats == nil {
		return nil
	}

	red := stats.CountByState(dashboard.SemaforoRojo) > 0
	yellow := stats.CountByState(dashboard.SemaforoAmarillo) > 0

	var out []Recommendation
	switch {
	case red:
		out = append(out, Recommendation{
			View:     session.ViewSemaforo,
			Text:     "Tienes alertas criticas en tu semaforo fiscal",
			Action:   "Revisar alertas",
			Severity: SeverityCritical,
		})
	case yellow:
		out = append(out, Recommendation{
			View:     session.ViewSemaforo,
			Text:     "Revisa tus alertas fiscales pendientes",
			Action:   "Ver semaforo",
			Severity: SeverityWarning,
		})
	}

	if stats.HealthScore < HealthyScore {
		out = append(out, Recommendation{
			View:     session.ViewPredicciones,
			Text:     fmt.Sprintf("Tu score de salud (%d/100) puede mejorar", stats.HealthScore),
			Action:   "Ver predicciones",
			Severity: SeverityWarning,
		})
	} else if !red && !yellow {
		out = append(out, Recommendation{
			View:     session.ViewCredito,
			Text:     "Tu empresa esta saludable, explora opciones de credito",
			Action:   "Ver financiamiento",
			Severity: SeverityPositive,
		})
	}
	return out
}
