// Package loader fetches the active company of a scenario and its dashboard
// datasets. Every operation takes a request token; a completion commits only
// while its token is still the latest, so overlapping loads resolve to the
// most recent request regardless of network ordering.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/api"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// API is the part of the backend client the loader uses
type API interface {
	Health(ctx context.Context) (api.HealthStatus, error)
	Seed(ctx context.Context, scenario dashboard.Scenario) (api.SeedResult, error)
	ListCompanies(ctx context.Context, scenario dashboard.Scenario) ([]dashboard.Company, error)
	Dashboard(ctx context.Context, companyID int64) (*dashboard.DashboardStats, error)
	HealthScore(ctx context.Context, companyID int64) (*dashboard.HealthScore, error)
	CFDIs(ctx context.Context, companyID int64, page, perPage int, tipo dashboard.CFDIType) (*dashboard.CFDIPage, error)
	Chat(ctx context.Context, companyID int64, message string) (*dashboard.ChatReply, error)
	Predictions(ctx context.Context, companyID int64) (dashboard.Predictions, error)
	Credit(ctx context.Context, companyID int64) (dashboard.CreditInfo, error)
}

// Metrics receives commit and discard counts per operation
type Metrics interface {
	LoadCommitted(operation string)
	LoadDiscarded(operation string)
	LoadFailed(operation, code string)
}

type noopMetrics struct{}

func (noopMetrics) LoadCommitted(string)      {}
func (noopMetrics) LoadDiscarded(string)      {}
func (noopMetrics) LoadFailed(string, string) {}

// Operation names used in logs and metrics
const (
	OpInitialize = "initialize"
	OpScenario   = "scenario"
	OpFullLoad   = "full_load"
	OpSeed       = "seed"
)

// Status is the data availability of the session
type Status string

const (
	StatusIdle               Status = "idle"
	StatusReady              Status = "ready"
	StatusBackendUnavailable Status = "backend_unavailable"
	StatusEmptyDataset       Status = "empty_dataset"
)

// Loader owns Company, DashboardStats and ScoreComponents
type Loader struct {
	api     API
	metrics Metrics
	logger  *zap.Logger

	seq atomic.Uint64

	mu         sync.RWMutex
	status     Status
	scenario   dashboard.Scenario
	company    *dashboard.Company
	companies  []dashboard.Company
	stats      *dashboard.DashboardStats
	components []dashboard.ScoreComponent
	empty      *dashboard.Scenario
	lastErr    *shared.DomainError
	generation uint64

	initializing int
	seeding      int
	switching    int
}

// New creates an idle loader
func New(client API, logger *zap.Logger, metrics Metrics) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Loader{
		api:      client,
		metrics:  metrics,
		logger:   logger.Named("loader"),
		status:   StatusIdle,
		scenario: dashboard.DefaultScenario,
	}
}

// begin issues the next request token
func (l *Loader) begin() uint64 {
	return l.seq.Add(1)
}

// commit applies fn only when tok is still the latest token
func (l *Loader) commit(tok uint64, op string, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tok != l.seq.Load() {
		l.metrics.LoadDiscarded(op)
		l.logger.Debug("discarding stale result",
			zap.String("operation", op),
			zap.Uint64("token", tok),
			zap.Uint64("latest", l.seq.Load()),
		)
		return false
	}
	fn()
	l.generation++
	l.metrics.LoadCommitted(op)
	return true
}

// fail records err when tok is still the latest and returns it
func (l *Loader) fail(tok uint64, op string, err *shared.DomainError) error {
	l.metrics.LoadFailed(op, err.Code)
	l.logger.Warn("load failed", zap.String("operation", op), zap.String("code", err.Code), zap.String("error", err.Message))
	l.mu.Lock()
	if tok == l.seq.Load() {
		l.lastErr = err
	}
	l.mu.Unlock()
	return err
}

func (l *Loader) setFlag(flag *int, delta int) {
	l.mu.Lock()
	*flag += delta
	l.mu.Unlock()
}

// classify maps a client error to the loader taxonomy
func classify(base *shared.DomainError, err error) *shared.DomainError {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	if api.IsTransport(err) {
		return shared.Wrap(shared.ErrNetworkError, err.Error())
	}
	if detail := api.DetailOf(err); detail != "" {
		return shared.Wrap(base, detail)
	}
	return shared.Wrap(base, err.Error())
}

// fetchPair loads the dashboard aggregate and the health score concurrently
func (l *Loader) fetchPair(ctx context.Context, companyID int64) (*dashboard.DashboardStats, *dashboard.HealthScore, error) {
	var (
		stats *dashboard.DashboardStats
		score *dashboard.HealthScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = l.api.Dashboard(gctx, companyID)
		if err != nil {
			return fmt.Errorf("dashboard stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		score, err = l.api.HealthScore(gctx, companyID)
		if err != nil {
			return fmt.Errorf("health score: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stats, score, nil
}

// apply must run under mu
func (l *Loader) apply(scenario dashboard.Scenario, company dashboard.Company, stats *dashboard.DashboardStats, score *dashboard.HealthScore) {
	l.scenario = scenario
	l.company = company.Clone()
	l.stats = stats.Clone()
	l.components = append([]dashboard.ScoreComponent(nil), score.Componentes...)
	l.empty = nil
	l.lastErr = nil
	l.status = StatusReady
}

// loadCompany fetches both datasets for company and commits them with it
func (l *Loader) loadCompany(ctx context.Context, tok uint64, op string, scenario dashboard.Scenario, company dashboard.Company) error {
	stats, score, err := l.fetchPair(ctx, company.ID)
	if err != nil {
		return l.fail(tok, op, classify(shared.ErrLoadError, err))
	}
	l.commit(tok, op, func() { l.apply(scenario, company, stats, score) })
	return nil
}

func scenarioOf(c dashboard.Company, fallback dashboard.Scenario) dashboard.Scenario {
	if c.DemoScenario != nil {
		if s := dashboard.Scenario(*c.DemoScenario); s.IsValid() {
			return s
		}
	}
	return fallback
}

// Initialize checks reachability, lists companies and loads the default
// scenario's company. An unreachable backend is final until restart.
func (l *Loader) Initialize(ctx context.Context) error {
	tok := l.begin()
	l.setFlag(&l.initializing, 1)
	defer l.setFlag(&l.initializing, -1)

	if _, err := l.api.Health(ctx); err != nil {
		l.commit(tok, OpInitialize, func() { l.status = StatusBackendUnavailable })
		return l.fail(tok, OpInitialize, shared.Wrap(shared.ErrNetworkUnavailable, err.Error()))
	}

	companies, err := l.api.ListCompanies(ctx, "")
	if err != nil {
		return l.fail(tok, OpInitialize, classify(shared.ErrLoadError, err))
	}

	if len(companies) == 0 {
		l.commit(tok, OpInitialize, func() {
			l.companies = nil
			l.status = StatusEmptyDataset
		})
		return l.fail(tok, OpInitialize, shared.ErrEmptyDataset)
	}

	company, ok := dashboard.FindByScenario(companies, dashboard.DefaultScenario)
	if !ok {
		l.commit(tok, OpInitialize, func() {
			l.companies = companies
			l.status = StatusReady
			s := dashboard.DefaultScenario
			l.empty = &s
		})
		return nil
	}

	l.commit(tok, OpInitialize, func() {
		l.companies = companies
		l.status = StatusReady
	})
	return l.loadCompany(ctx, tok, OpInitialize, dashboard.DefaultScenario, company)
}

// LoadForScenario selects the first company of scenario and loads it. With
// no match the session is unchanged and an EmptyScenario signal is recorded.
// Rejected while a seed is running.
func (l *Loader) LoadForScenario(ctx context.Context, scenario dashboard.Scenario) error {
	if !scenario.IsValid() {
		return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("unknown scenario %q", scenario))
	}

	l.mu.Lock()
	if l.seeding > 0 {
		l.mu.Unlock()
		return shared.Wrap(shared.ErrInvalidState, "demo data is being seeded")
	}
	l.switching++
	l.mu.Unlock()
	defer l.setFlag(&l.switching, -1)

	tok := l.begin()
	companies, err := l.api.ListCompanies(ctx, scenario)
	if err != nil {
		return l.fail(tok, OpScenario, classify(shared.ErrLoadError, err))
	}
	if len(companies) == 0 {
		l.logger.Info("no company for scenario", zap.String("scenario", string(scenario)))
		l.commit(tok, OpScenario, func() {
			s := scenario
			l.empty = &s
		})
		return nil
	}
	return l.loadCompany(ctx, tok, OpScenario, scenario, companies[0])
}

// FullLoad refreshes the datasets of a known company. Rejected while a seed
// is running; an unknown id leaves in-flight loads untouched.
func (l *Loader) FullLoad(ctx context.Context, companyID int64) error {
	l.mu.Lock()
	if l.seeding > 0 {
		l.mu.Unlock()
		return shared.Wrap(shared.ErrInvalidState, "demo data is being seeded")
	}
	var (
		company dashboard.Company
		found   bool
	)
	for _, c := range l.companies {
		if c.ID == companyID {
			company, found = c, true
			break
		}
	}
	if !found && l.company != nil && l.company.ID == companyID {
		company, found = *l.company.Clone(), true
	}
	current := l.scenario
	if !found {
		l.mu.Unlock()
		return shared.Wrap(shared.ErrNotFound, fmt.Sprintf("company %d", companyID))
	}
	// issued under the lock so a seed starting now always gets a newer token
	tok := l.begin()
	l.mu.Unlock()

	return l.loadCompany(ctx, tok, OpFullLoad, scenarioOf(company, current), company)
}

// Reload refreshes the current company, if any
func (l *Loader) Reload(ctx context.Context) error {
	id, err := l.currentCompanyID()
	if err != nil {
		return err
	}
	return l.FullLoad(ctx, id)
}

// Seed creates demo data, re-lists companies and loads scenario (A when
// empty). The seeding flag covers the whole operation.
func (l *Loader) Seed(ctx context.Context, scenario dashboard.Scenario) error {
	if scenario != "" && !scenario.IsValid() {
		return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("unknown scenario %q", scenario))
	}

	l.mu.Lock()
	if l.seeding > 0 {
		l.mu.Unlock()
		return shared.Wrap(shared.ErrInvalidState, "a seed is already running")
	}
	l.seeding++
	tok := l.begin()
	l.mu.Unlock()
	defer l.setFlag(&l.seeding, -1)

	if _, err := l.api.Seed(ctx, scenario); err != nil {
		return l.fail(tok, OpSeed, classify(shared.ErrLoadError, err))
	}

	companies, err := l.api.ListCompanies(ctx, "")
	if err != nil {
		return l.fail(tok, OpSeed, classify(shared.ErrLoadError, err))
	}

	target := scenario
	if target == "" {
		target = dashboard.DefaultScenario
	}
	company, ok := dashboard.FindByScenario(companies, target)

	l.commit(tok, OpSeed, func() {
		l.companies = companies
		if len(companies) == 0 {
			l.status = StatusEmptyDataset
			return
		}
		l.status = StatusReady
		if !ok {
			s := target
			l.empty = &s
		}
	})
	if len(companies) == 0 {
		return l.fail(tok, OpSeed, shared.ErrEmptyDataset)
	}
	if !ok {
		return nil
	}
	return l.loadCompany(ctx, tok, OpSeed, target, company)
}

func (l *Loader) currentCompanyID() (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.company == nil {
		return 0, shared.Wrap(shared.ErrInvalidState, "no company selected")
	}
	return l.company.ID, nil
}

// Flags reports the loads in flight
func (l *Loader) Flags() session.LoadingFlags {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return session.LoadingFlags{
		Initializing:      l.initializing > 0,
		Seeding:           l.seeding > 0,
		ScenarioSwitching: l.switching > 0,
	}
}

// Reset drops all loaded data and invalidates in-flight requests
func (l *Loader) Reset() {
	l.begin()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = StatusIdle
	l.scenario = dashboard.DefaultScenario
	l.company = nil
	l.companies = nil
	l.stats = nil
	l.components = nil
	l.empty = nil
	l.lastErr = nil
	l.generation++
}
