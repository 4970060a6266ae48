package command

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		text string
		want Intent
	}{
		{"muéstrame los ingresos", IntentShowIncome},
		{"Mostrar ingresos", IntentShowIncome},
		{"  MOSTRAR   LOS   INGRESOS  ", IntentShowIncome},
		{"ver mis gastos", IntentShowExpenses},
		{"mostrar los egresos", IntentShowExpenses},
		{"abrir el semáforo", IntentOpenCompliance},
		{"ver semaforo fiscal", IntentOpenCompliance},
		{"hablar con el cfo", IntentOpenAdvisor},
		{"abre el CFO", IntentOpenAdvisor},
		{"cambiar a escenario a", IntentSwitchScenarioA},
		{"cambiar a escenario b", IntentSwitchScenarioB},
		{"escenario c", IntentSwitchScenarioC},
		{"demo sme", IntentSwitchScenarioA},
		{"cambiar a scale up", IntentSwitchScenarioB},
		{"cambia a despacho", IntentSwitchScenarioC},
		{"sincronizar con el SAT", IntentSync},
		{"sincroniza el sat", IntentSync},
		{"sincronizar", IntentUnknown},
		{"hola buenos días", IntentUnknown},
		{"", IntentUnknown},
		{"   ", IntentUnknown},
		{"sincronizacion pendiente", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.text))
		})
	}
}

func TestMatcher_FirstRuleWins(t *testing.T) {
	m := NewMatcher()
	assert.Equal(t, IntentShowIncome, m.Match("mostrar ingresos y mostrar egresos"))

	custom := NewMatcher(
		Rule{IntentSync, regexp.MustCompile(`todo`)},
		Rule{IntentOpenAdvisor, regexp.MustCompile(`todo`)},
	)
	assert.Equal(t, IntentSync, custom.Match("hazlo todo"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "muestrame el semaforo", Normalize("  Muéstrame\tel   SEMÁFORO "))
	assert.Equal(t, "", Normalize(""))
}

func TestIntent_TextRoundTrip(t *testing.T) {
	for _, i := range AllIntents() {
		parsed, err := ParseIntent(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, parsed)
	}

	out, err := json.Marshal(map[string]Intent{"intent": IntentSwitchScenarioB})
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"switch-scenario-b"}`, string(out))

	_, err = ParseIntent("dance")
	assert.Error(t, err)
	assert.Equal(t, "intent(42)", Intent(42).String())
	assert.False(t, IntentUnknown.IsKnown())
}

func fullTable(calls *[]Intent) map[Intent]Handler {
	table := make(map[Intent]Handler)
	for _, i := range AllIntents() {
		intent := i
		table[intent] = func(ctx context.Context) error {
			*calls = append(*calls, intent)
			return nil
		}
	}
	return table
}

func TestNewDispatcher_RequiresEveryIntent(t *testing.T) {
	var calls []Intent
	table := fullTable(&calls)
	delete(table, IntentSync)

	_, err := NewDispatcher(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync")
}

func TestDispatcher_UnknownIsNoop(t *testing.T) {
	var calls []Intent
	d, err := NewDispatcher(fullTable(&calls))
	require.NoError(t, err)

	handled, err := d.Dispatch(context.Background(), IntentUnknown)
	assert.False(t, handled)
	assert.NoError(t, err)
	assert.Empty(t, calls)

	handled, err = d.Dispatch(context.Background(), Intent(99))
	assert.False(t, handled)
	assert.NoError(t, err)

	handled, err = d.Dispatch(context.Background(), IntentOpenAdvisor)
	assert.True(t, handled)
	assert.NoError(t, err)
	assert.Equal(t, []Intent{IntentOpenAdvisor}, calls)
}

func TestDispatcher_PropagatesHandlerError(t *testing.T) {
	var calls []Intent
	table := fullTable(&calls)
	boom := errors.New("boom")
	table[IntentSync] = func(ctx context.Context) error { return boom }

	d, err := NewDispatcher(table)
	require.NoError(t, err)

	handled, err := d.Dispatch(context.Background(), IntentSync)
	assert.True(t, handled)
	assert.ErrorIs(t, err, boom)
}
