package loader

import (
	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

// Snapshot is an immutable copy of the loader state
type Snapshot struct {
	Status          Status                     `json:"status"`
	Scenario        dashboard.Scenario         `json:"scenario"`
	Company         *dashboard.Company         `json:"company"`
	Companies       []dashboard.Company        `json:"companies"`
	Stats           *dashboard.DashboardStats  `json:"dashboard_stats"`
	ScoreComponents []dashboard.ScoreComponent `json:"score_components"`
	// EmptyScenario names the last requested scenario that had no company
	EmptyScenario *dashboard.Scenario  `json:"empty_scenario,omitempty"`
	Flags         session.LoadingFlags `json:"loading_flags"`
	LastError     *shared.DomainError  `json:"last_error,omitempty"`
	Generation    uint64               `json:"generation"`
}

// HasData reports whether at least one company exists
func (s Snapshot) HasData() bool {
	return len(s.Companies) > 0
}

// Snapshot copies the current state
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{
		Status:          l.status,
		Scenario:        l.scenario,
		Company:         l.company.Clone(),
		Stats:           l.stats.Clone(),
		ScoreComponents: append([]dashboard.ScoreComponent(nil), l.components...),
		Flags: session.LoadingFlags{
			Initializing:      l.initializing > 0,
			Seeding:           l.seeding > 0,
			ScenarioSwitching: l.switching > 0,
		},
		Generation: l.generation,
	}
	if len(l.companies) > 0 {
		snap.Companies = make([]dashboard.Company, len(l.companies))
		for i := range l.companies {
			snap.Companies[i] = *l.companies[i].Clone()
		}
	}
	if l.empty != nil {
		s := *l.empty
		snap.EmptyScenario = &s
	}
	if l.lastErr != nil {
		e := *l.lastErr
		snap.LastError = &e
	}
	return snap
}
