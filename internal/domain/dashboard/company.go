// Package dashboard holds the read models the POA API returns for a company:
// the company summary, the dashboard aggregate and the health score breakdown.
// Values are immutable snapshots; a new load replaces them wholesale.
package dashboard

import (
	"github.com/shopspring/decimal"
)

// Company is a business whose financial data the dashboard shows
type Company struct {
	ID             int64           `json:"id"`
	RFC            string          `json:"rfc"`
	RazonSocial    string          `json:"razon_social"`
	RegimenFiscal  *string         `json:"regimen_fiscal"`
	CodigoPostal   *string         `json:"codigo_postal"`
	Sector         *string         `json:"sector"`
	SATConnected   bool            `json:"sat_connected"`
	SATLastSync    *string         `json:"sat_last_sync"`
	DemoScenario   *string         `json:"demo_scenario"`
	CreatedAt      string          `json:"created_at"`
	TotalCFDIs     int             `json:"total_cfdis"`
	IngresosMes    decimal.Decimal `json:"ingresos_mes"`
	EgresosMes     decimal.Decimal `json:"egresos_mes"`
	HealthScore    int             `json:"health_score"`
	AlertasActivas int             `json:"alertas_activas"`
}

// InScenario reports whether the company belongs to the given demo scenario
func (c Company) InScenario(s Scenario) bool {
	return c.DemoScenario != nil && Scenario(*c.DemoScenario) == s
}

// Clone returns a deep copy so callers can never mutate a published snapshot
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	out := *c
	out.RegimenFiscal = cloneString(c.RegimenFiscal)
	out.CodigoPostal = cloneString(c.CodigoPostal)
	out.Sector = cloneString(c.Sector)
	out.SATLastSync = cloneString(c.SATLastSync)
	out.DemoScenario = cloneString(c.DemoScenario)
	return &out
}

// FindByScenario returns the first company of the list tagged with scenario s
func FindByScenario(companies []Company, s Scenario) (Company, bool) {
	for _, c := range companies {
		if c.InScenario(s) {
			return c, true
		}
	}
	return Company{}, false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
