package session

// ViewID identifies a dashboard section
type ViewID string

const (
	ViewDashboard     ViewID = "dashboard"
	ViewCFDIs         ViewID = "cfdis"
	ViewSemaforo      ViewID = "semaforo"
	ViewCFO           ViewID = "cfo"
	ViewPredicciones  ViewID = "predicciones"
	ViewCredito       ViewID = "credito"
	ViewConfig        ViewID = "config"
	ViewNotifications ViewID = "notificaciones"
)

// DefaultView is shown after sign-in
const DefaultView = ViewDashboard

var knownViews = []ViewID{
	ViewDashboard,
	ViewCFDIs,
	ViewSemaforo,
	ViewCFO,
	ViewPredicciones,
	ViewCredito,
	ViewConfig,
	ViewNotifications,
}

// KnownViews returns the sidebar order
func KnownViews() []ViewID {
	out := make([]ViewID, len(knownViews))
	copy(out, knownViews)
	return out
}

func (v ViewID) IsKnown() bool {
	for _, k := range knownViews {
		if k == v {
			return true
		}
	}
	return false
}

// LoadingFlags are independent; seeding and a scenario switch may overlap
type LoadingFlags struct {
	Initializing      bool `json:"initializing"`
	Seeding           bool `json:"seeding"`
	ScenarioSwitching bool `json:"scenario_switching"`
}

// Any reports whether some load is in flight
func (f LoadingFlags) Any() bool {
	return f.Initializing || f.Seeding || f.ScenarioSwitching
}
