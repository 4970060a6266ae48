package orchestrator

import (
	"github.com/MarxCha/poa-dashboard/internal/application/loader"
	"github.com/MarxCha/poa-dashboard/internal/application/navigator"
	"github.com/MarxCha/poa-dashboard/internal/application/voice"
	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

// Snapshot is everything the presentation layer renders
type Snapshot struct {
	AuthState       session.AuthState          `json:"auth_state"`
	ActiveView      session.ViewID             `json:"active_view"`
	Status          loader.Status              `json:"status"`
	Scenario        dashboard.Scenario         `json:"scenario"`
	Company         *dashboard.Company         `json:"company"`
	Companies       []dashboard.Company        `json:"companies"`
	DashboardStats  *dashboard.DashboardStats  `json:"dashboard_stats"`
	ScoreComponents []dashboard.ScoreComponent `json:"score_components"`
	EmptyScenario   *dashboard.Scenario        `json:"empty_scenario,omitempty"`
	LoadingFlags    session.LoadingFlags       `json:"loading_flags"`
	Voice           voice.State                `json:"voice"`
	Recommendations []navigator.Recommendation `json:"recommendations"`
	LastLoadError   *shared.DomainError        `json:"last_load_error,omitempty"`
	Errors          []ErrorRecord              `json:"errors"`
	Generation      uint64                     `json:"generation"`
}

// HasData reports whether the backend holds at least one company
func (s Snapshot) HasData() bool {
	return len(s.Companies) > 0
}

// Snapshot assembles a copy of the session. Each part is consistent on its
// own; the loader part is one atomic read.
func (o *Orchestrator) Snapshot() Snapshot {
	ls := o.loader.Snapshot()
	return Snapshot{
		AuthState:       o.gate.State(),
		ActiveView:      o.nav.Active(),
		Status:          ls.Status,
		Scenario:        ls.Scenario,
		Company:         ls.Company,
		Companies:       ls.Companies,
		DashboardStats:  ls.Stats,
		ScoreComponents: ls.ScoreComponents,
		EmptyScenario:   ls.EmptyScenario,
		LoadingFlags:    ls.Flags,
		Voice:           o.voice.State(),
		Recommendations: navigator.Recommendations(ls.Stats),
		LastLoadError:   ls.LastError,
		Errors:          o.Errors(),
		Generation:      ls.Generation,
	}
}
