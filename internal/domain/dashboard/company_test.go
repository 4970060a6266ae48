package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

func fakeCompany(id int64, scenario Scenario) Company {
	s := string(scenario)
	return Company{
		ID:           id,
		RFC:          gofakeit.LetterN(4) + gofakeit.DigitN(6),
		RazonSocial:  gofakeit.Company(),
		DemoScenario: &s,
		IngresosMes:  decimal.NewFromFloat(gofakeit.Price(1000, 900000)),
	}
}

func TestParseScenario(t *testing.T) {
	tests := []struct {
		in      string
		want    Scenario
		wantErr bool
	}{
		{"A", ScenarioA, false},
		{" b ", ScenarioB, false},
		{"c", ScenarioC, false},
		{"D", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScenario(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScenario_Label(t *testing.T) {
	assert.Equal(t, "SME Estable", ScenarioA.Label())
	assert.Equal(t, "", Scenario("Z").Label())
	assert.Len(t, AllScenarios(), 3)
}

func TestFindByScenario(t *testing.T) {
	companies := []Company{fakeCompany(1, ScenarioB), fakeCompany(2, ScenarioA), fakeCompany(3, ScenarioA)}

	c, ok := FindByScenario(companies, ScenarioA)
	require.True(t, ok)
	assert.Equal(t, int64(2), c.ID)

	_, ok = FindByScenario(companies, ScenarioC)
	assert.False(t, ok)
}

func TestCompany_CloneIsDeep(t *testing.T) {
	orig := fakeCompany(7, ScenarioA)
	clone := orig.Clone()

	*clone.DemoScenario = "C"
	assert.True(t, orig.InScenario(ScenarioA))

	var nilCompany *Company
	assert.Nil(t, nilCompany.Clone())
}

func TestDashboardStats_DecodesNumbers(t *testing.T) {
	payload := `{"ingresos_mes": 125000.5, "egresos_mes": 80000, "health_score": 72,
		"semaforo": [{"nombre":"Opinion","estado":"rojo","detalle":"x"},{"nombre":"IVA","estado":"verde","detalle":"y"}],
		"revenue_data": [{"mes":"Ene","ingresos":10,"egresos":5}], "total_cfdis": 340, "last_sync": null}`

	var stats DashboardStats
	require.NoError(t, json.Unmarshal([]byte(payload), &stats))

	assert.True(t, stats.IngresosMes.Equal(decimal.RequireFromString("125000.5")))
	assert.Equal(t, 72, stats.HealthScore)
	assert.Equal(t, 1, stats.CountByState(SemaforoRojo))
	assert.Equal(t, 0, stats.CountByState(SemaforoAmarillo))
	assert.Nil(t, stats.LastSync)

	clone := stats.Clone()
	clone.Semaforo[0].Estado = SemaforoVerde
	assert.Equal(t, SemaforoRojo, stats.Semaforo[0].Estado)
}

func TestCFDIType_IsValid(t *testing.T) {
	assert.True(t, CFDIType("").IsValid())
	assert.True(t, CFDIIngreso.IsValid())
	assert.False(t, CFDIType("nomina").IsValid())
}

func TestPredictions_MarshalVerbatim(t *testing.T) {
	out, err := json.Marshal(struct {
		P Predictions `json:"p"`
		C CreditInfo  `json:"c"`
	}{P: Predictions(`{"company_name":"ACME"}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":{"company_name":"ACME"},"c":null}`, string(out))
}
