package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/api"
	"github.com/MarxCha/poa-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMetrics struct {
	mu        sync.Mutex
	committed map[string]int
	discarded map[string]int
	failed    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{committed: map[string]int{}, discarded: map[string]int{}, failed: map[string]int{}}
}

func (m *recordingMetrics) LoadCommitted(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed[op]++
}

func (m *recordingMetrics) LoadDiscarded(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded[op]++
}

func (m *recordingMetrics) LoadFailed(op, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[op+":"+code]++
}

func (m *recordingMetrics) Discarded(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discarded[op]
}

func threeScenarios() *testutil.Backend {
	return testutil.NewBackend().
		WithCompany(testutil.Company(1, dashboard.ScenarioA), testutil.Stats(1, 82)).
		WithCompany(testutil.Company(2, dashboard.ScenarioB), testutil.Stats(2, 45)).
		WithCompany(testutil.Company(3, dashboard.ScenarioC), testutil.Stats(3, 71))
}

func initialized(t *testing.T, b *testutil.Backend) (*Loader, *recordingMetrics) {
	t.Helper()
	m := newRecordingMetrics()
	l := New(b, zap.NewNop(), m)
	require.NoError(t, l.Initialize(context.Background()))
	return l, m
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("loads scenario A company", func(t *testing.T) {
		l, _ := initialized(t, threeScenarios())

		snap := l.Snapshot()
		assert.Equal(t, StatusReady, snap.Status)
		assert.Equal(t, dashboard.ScenarioA, snap.Scenario)
		require.NotNil(t, snap.Company)
		assert.Equal(t, int64(1), snap.Company.ID)
		require.NotNil(t, snap.Stats)
		assert.Equal(t, 1, snap.Stats.TotalCFDIs)
		require.Len(t, snap.ScoreComponents, 1)
		assert.Equal(t, "Liquidez-1", snap.ScoreComponents[0].Nombre)
		assert.Len(t, snap.Companies, 3)
		assert.True(t, snap.HasData())
		assert.False(t, snap.Flags.Any())
		assert.Nil(t, snap.LastError)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		b := threeScenarios()
		b.Down = true
		l := New(b, nil, nil)

		err := l.Initialize(ctx)
		assert.ErrorIs(t, err, shared.ErrNetworkUnavailable)
		snap := l.Snapshot()
		assert.Equal(t, StatusBackendUnavailable, snap.Status)
		require.NotNil(t, snap.LastError)
		assert.Equal(t, shared.CodeNetworkUnavailable, snap.LastError.Code)
		assert.Equal(t, 0, b.Calls("companies"))
	})

	t.Run("empty dataset", func(t *testing.T) {
		l := New(testutil.NewBackend(), nil, nil)

		err := l.Initialize(ctx)
		assert.ErrorIs(t, err, shared.ErrEmptyDataset)
		snap := l.Snapshot()
		assert.Equal(t, StatusEmptyDataset, snap.Status)
		assert.False(t, snap.HasData())
		assert.Nil(t, snap.Company)
	})

	t.Run("no scenario A company", func(t *testing.T) {
		b := testutil.NewBackend().WithCompany(testutil.Company(5, dashboard.ScenarioB), testutil.Stats(5, 50))
		l := New(b, nil, nil)

		require.NoError(t, l.Initialize(ctx))
		snap := l.Snapshot()
		assert.Equal(t, StatusReady, snap.Status)
		assert.Nil(t, snap.Company)
		require.NotNil(t, snap.EmptyScenario)
		assert.Equal(t, dashboard.ScenarioA, *snap.EmptyScenario)
	})
}

func TestLoadForScenario_LastRequestWins(t *testing.T) {
	b := threeScenarios()
	l, m := initialized(t, b)
	ctx := context.Background()

	releaseB := b.Hold("dashboard:2")

	done := make(chan error, 1)
	go func() { done <- l.LoadForScenario(ctx, dashboard.ScenarioB) }()

	require.Eventually(t, func() bool { return b.Calls("dashboard:2") == 1 }, time.Second, time.Millisecond)
	assert.True(t, l.Flags().ScenarioSwitching)

	require.NoError(t, l.LoadForScenario(ctx, dashboard.ScenarioC))
	releaseB()
	require.NoError(t, <-done)

	snap := l.Snapshot()
	assert.Equal(t, dashboard.ScenarioC, snap.Scenario)
	assert.Equal(t, int64(3), snap.Company.ID)
	assert.Equal(t, 3, snap.Stats.TotalCFDIs)
	assert.Equal(t, "Liquidez-3", snap.ScoreComponents[0].Nombre)
	assert.False(t, snap.Flags.ScenarioSwitching)
	assert.Equal(t, 1, m.Discarded(OpScenario))
}

func TestLoadForScenario_HealthFailureKeepsPriorState(t *testing.T) {
	b := threeScenarios()
	l, _ := initialized(t, b)
	before := l.Snapshot()

	b.FailOn("health-score:2", &api.APIError{StatusCode: 500, Detail: "boom"})
	err := l.LoadForScenario(context.Background(), dashboard.ScenarioB)
	assert.ErrorIs(t, err, shared.ErrLoadError)

	snap := l.Snapshot()
	assert.Equal(t, dashboard.ScenarioA, snap.Scenario)
	assert.Equal(t, before.Company.ID, snap.Company.ID)
	assert.Equal(t, before.Stats.TotalCFDIs, snap.Stats.TotalCFDIs)
	assert.Equal(t, before.ScoreComponents, snap.ScoreComponents)
	require.NotNil(t, snap.LastError)
	assert.Equal(t, shared.CodeLoadError, snap.LastError.Code)
	assert.False(t, snap.Flags.ScenarioSwitching)
}

func TestLoadForScenario_EmptyScenario(t *testing.T) {
	b := testutil.NewBackend().WithCompany(testutil.Company(1, dashboard.ScenarioA), testutil.Stats(1, 82))
	l, _ := initialized(t, b)

	require.NoError(t, l.LoadForScenario(context.Background(), dashboard.ScenarioB))

	snap := l.Snapshot()
	assert.Equal(t, dashboard.ScenarioA, snap.Scenario)
	assert.Equal(t, int64(1), snap.Company.ID)
	require.NotNil(t, snap.EmptyScenario)
	assert.Equal(t, dashboard.ScenarioB, *snap.EmptyScenario)
	assert.False(t, snap.Flags.ScenarioSwitching)

	// a successful switch clears the signal
	require.NoError(t, l.LoadForScenario(context.Background(), dashboard.ScenarioA))
	assert.Nil(t, l.Snapshot().EmptyScenario)
}

func TestLoadForScenario_InvalidScenario(t *testing.T) {
	l, _ := initialized(t, threeScenarios())
	err := l.LoadForScenario(context.Background(), "D")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves empty dataset", func(t *testing.T) {
		b := testutil.NewBackend().WithSeedData(
			testutil.Company(10, dashboard.ScenarioA),
			testutil.Company(11, dashboard.ScenarioB),
		)
		l := New(b, nil, nil)
		require.ErrorIs(t, l.Initialize(ctx), shared.ErrEmptyDataset)

		require.NoError(t, l.Seed(ctx, ""))
		snap := l.Snapshot()
		assert.Equal(t, StatusReady, snap.Status)
		assert.Equal(t, int64(10), snap.Company.ID)
		assert.Len(t, snap.Companies, 2)
		assert.False(t, snap.Flags.Seeding)
	})

	t.Run("requested scenario", func(t *testing.T) {
		b := testutil.NewBackend().WithSeedData(testutil.Company(20, dashboard.ScenarioC))
		l := New(b, nil, nil)

		require.NoError(t, l.Seed(ctx, dashboard.ScenarioC))
		snap := l.Snapshot()
		assert.Equal(t, dashboard.ScenarioC, snap.Scenario)
		assert.Equal(t, int64(20), snap.Company.ID)
	})

	t.Run("flag covers re-fetch and clears on failure", func(t *testing.T) {
		b := testutil.NewBackend().WithSeedData(testutil.Company(10, dashboard.ScenarioA))
		l := New(b, nil, nil)
		release := b.Hold("companies")
		b.FailOn("companies", errors.Join(api.ErrTransport, errors.New("reset by peer")))

		done := make(chan error, 1)
		go func() { done <- l.Seed(ctx, "") }()

		require.Eventually(t, func() bool { return b.Calls("companies") == 1 }, time.Second, time.Millisecond)
		assert.True(t, l.Flags().Seeding)

		err := l.LoadForScenario(ctx, dashboard.ScenarioB)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.ErrorIs(t, l.Seed(ctx, ""), shared.ErrInvalidState)

		release()
		err = <-done
		assert.ErrorIs(t, err, shared.ErrNetworkError)
		assert.False(t, l.Flags().Seeding)
		assert.Equal(t, int32(1), b.SeedCalls.Load())
	})

	t.Run("reload cannot supersede a running seed", func(t *testing.T) {
		b := testutil.NewBackend().
			WithCompany(testutil.Company(1, dashboard.ScenarioA), testutil.Stats(1, 82)).
			WithSeedData(testutil.Company(20, dashboard.ScenarioC))
		l, _ := initialized(t, b)
		release := b.Hold("companies")

		done := make(chan error, 1)
		go func() { done <- l.Seed(ctx, dashboard.ScenarioC) }()
		require.Eventually(t, func() bool { return b.Calls("companies") == 2 }, time.Second, time.Millisecond)

		assert.ErrorIs(t, l.Reload(ctx), shared.ErrInvalidState)
		assert.ErrorIs(t, l.FullLoad(ctx, 1), shared.ErrInvalidState)

		release()
		require.NoError(t, <-done)

		snap := l.Snapshot()
		assert.False(t, snap.Flags.Seeding)
		assert.Equal(t, dashboard.ScenarioC, snap.Scenario)
		require.NotNil(t, snap.Company)
		assert.Equal(t, int64(20), snap.Company.ID)
		assert.Len(t, snap.Companies, 2)
	})

	t.Run("seed endpoint failure", func(t *testing.T) {
		b := testutil.NewBackend()
		b.FailOn("seed", &api.APIError{StatusCode: 500, Detail: "db locked"})
		l := New(b, nil, nil)

		err := l.Seed(ctx, "")
		assert.ErrorIs(t, err, shared.ErrLoadError)
		assert.Contains(t, err.Error(), "db locked")
		assert.False(t, l.Flags().Seeding)
	})

	t.Run("invalid scenario", func(t *testing.T) {
		l := New(testutil.NewBackend(), nil, nil)
		assert.ErrorIs(t, l.Seed(ctx, "Z"), shared.ErrInvalidInput)
	})
}

func TestFullLoad(t *testing.T) {
	b := threeScenarios()
	l, _ := initialized(t, b)
	ctx := context.Background()

	require.NoError(t, l.FullLoad(ctx, 3))
	snap := l.Snapshot()
	assert.Equal(t, int64(3), snap.Company.ID)
	assert.Equal(t, dashboard.ScenarioC, snap.Scenario)

	assert.ErrorIs(t, l.FullLoad(ctx, 99), shared.ErrNotFound)

	gen := l.Snapshot().Generation
	require.NoError(t, l.Reload(ctx))
	assert.Greater(t, l.Snapshot().Generation, gen)
	assert.Equal(t, 2, b.Calls("dashboard:3"))
}

func TestFullLoad_UnknownCompanyKeepsInFlightSwitch(t *testing.T) {
	b := threeScenarios()
	l, m := initialized(t, b)
	ctx := context.Background()

	release := b.Hold("dashboard:2")
	done := make(chan error, 1)
	go func() { done <- l.LoadForScenario(ctx, dashboard.ScenarioB) }()
	require.Eventually(t, func() bool { return b.Calls("dashboard:2") == 1 }, time.Second, time.Millisecond)

	assert.ErrorIs(t, l.FullLoad(ctx, 99), shared.ErrNotFound)
	release()
	require.NoError(t, <-done)

	snap := l.Snapshot()
	require.NotNil(t, snap.Company)
	assert.Equal(t, int64(2), snap.Company.ID)
	assert.Equal(t, dashboard.ScenarioB, snap.Scenario)
	assert.Zero(t, m.Discarded(OpScenario))
}

func TestReset_InvalidatesInFlight(t *testing.T) {
	b := threeScenarios()
	l, m := initialized(t, b)
	ctx := context.Background()

	release := b.Hold("dashboard:2")
	done := make(chan error, 1)
	go func() { done <- l.LoadForScenario(ctx, dashboard.ScenarioB) }()
	require.Eventually(t, func() bool { return b.Calls("dashboard:2") == 1 }, time.Second, time.Millisecond)

	l.Reset()
	release()
	require.NoError(t, <-done)

	snap := l.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Nil(t, snap.Company)
	assert.Nil(t, snap.Stats)
	assert.Equal(t, 1, m.Discarded(OpScenario))
}

func TestSnapshot_IsImmutable(t *testing.T) {
	l, _ := initialized(t, testutil.NewBackend().
		WithCompany(testutil.Company(1, dashboard.ScenarioA), testutil.Stats(1, 80, dashboard.SemaforoVerde)))

	snap := l.Snapshot()
	snap.Company.RazonSocial = "mutated"
	snap.Stats.Semaforo[0].Estado = dashboard.SemaforoRojo
	snap.ScoreComponents[0].Nombre = "mutated"

	fresh := l.Snapshot()
	assert.NotEqual(t, "mutated", fresh.Company.RazonSocial)
	assert.Equal(t, dashboard.SemaforoVerde, fresh.Stats.Semaforo[0].Estado)
	assert.NotEqual(t, "mutated", fresh.ScoreComponents[0].Nombre)
}

func TestPassThroughs(t *testing.T) {
	ctx := context.Background()

	t.Run("require a company", func(t *testing.T) {
		l := New(testutil.NewBackend(), nil, nil)
		_, err := l.CFDIs(ctx, 1, 20, "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		_, err = l.Predictions(ctx)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		_, err = l.Credit(ctx)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		_, err = l.SendChatMessage(ctx, "hola")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("bound to the current company", func(t *testing.T) {
		b := threeScenarios()
		l, _ := initialized(t, b)

		page, err := l.CFDIs(ctx, 1, 20, dashboard.CFDIEgreso)
		require.NoError(t, err)
		require.Len(t, page.CFDIs, 1)
		assert.Equal(t, dashboard.CFDIEgreso, page.CFDIs[0].TipoComprobante)

		pred, err := l.Predictions(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"company_id":1}`, string(pred))

		credit, err := l.Credit(ctx)
		require.NoError(t, err)
		assert.Contains(t, string(credit), `"elegible":true`)

		reply, err := l.SendChatMessage(ctx, "  ¿cómo va mi flujo?  ")
		require.NoError(t, err)
		assert.Equal(t, "empresa 1: ¿cómo va mi flujo?", reply.Response)
	})

	t.Run("input validation", func(t *testing.T) {
		l, _ := initialized(t, threeScenarios())

		_, err := l.CFDIs(ctx, 0, 20, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = l.CFDIs(ctx, 1, MaxPerPage+1, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = l.CFDIs(ctx, 1, 20, "nota")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = l.SendChatMessage(ctx, "   ")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("backend errors are classified", func(t *testing.T) {
		b := threeScenarios()
		l, _ := initialized(t, b)
		b.FailOn("chat", &api.APIError{StatusCode: 404, Detail: "Empresa no encontrada"})

		_, err := l.SendChatMessage(ctx, "hola")
		assert.ErrorIs(t, err, shared.ErrLoadError)
		assert.Contains(t, err.Error(), "Empresa no encontrada")
	})
}
