package dashboard

import (
	"fmt"
	"strings"

	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

// Scenario identifies one of the preset demo datasets
type Scenario string

const (
	ScenarioA Scenario = "A"
	ScenarioB Scenario = "B"
	ScenarioC Scenario = "C"
)

// DefaultScenario is selected when nothing else was requested
const DefaultScenario = ScenarioA

var scenarioLabels = map[Scenario]string{
	ScenarioA: "SME Estable",
	ScenarioB: "Scale-up en Riesgo",
	ScenarioC: "Despacho Contable",
}

// AllScenarios returns the scenarios in display order
func AllScenarios() []Scenario {
	return []Scenario{ScenarioA, ScenarioB, ScenarioC}
}

// IsValid reports whether s is one of the known scenarios
func (s Scenario) IsValid() bool {
	_, ok := scenarioLabels[s]
	return ok
}

// Label returns the human readable dataset name
func (s Scenario) Label() string {
	return scenarioLabels[s]
}

func (s Scenario) String() string {
	return string(s)
}

// ParseScenario accepts "a", "B", " c " and returns the matching scenario
func ParseScenario(raw string) (Scenario, error) {
	s := Scenario(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("unknown scenario %q", raw))
	}
	return s, nil
}
