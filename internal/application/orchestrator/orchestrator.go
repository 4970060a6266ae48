// Package orchestrator composes the auth gate, the scenario loader, the
// view navigator and the voice adapter into one dashboard session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/application/auth"
	"github.com/MarxCha/poa-dashboard/internal/application/loader"
	"github.com/MarxCha/poa-dashboard/internal/application/navigator"
	"github.com/MarxCha/poa-dashboard/internal/application/voice"
	"github.com/MarxCha/poa-dashboard/internal/domain/command"
	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/logger"
)

// maxErrors bounds the recorded error history
const maxErrors = 20

// Metrics receives dispatched intents
type Metrics interface {
	IntentMatched(intent string)
}

// Deps are the collaborators of an Orchestrator
type Deps struct {
	Gate      *auth.Gate
	Loader    *loader.Loader
	Navigator *navigator.Navigator
	Voice     *voice.Adapter
	Store     session.Store
	Metrics   Metrics
	Logger    *zap.Logger
	Clock     func() time.Time
}

// ErrorRecord is one failure that happened after startup
type ErrorRecord struct {
	Operation string    `json:"operation"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Orchestrator is the single session controller. Failures of its operations
// are returned and also recorded, never propagated as panics.
type Orchestrator struct {
	gate       *auth.Gate
	loader     *loader.Loader
	nav        *navigator.Navigator
	voice      *voice.Adapter
	store      session.Store
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time
	dispatcher *command.Dispatcher

	mu      sync.Mutex
	errs    []ErrorRecord
	intents sync.WaitGroup
}

// New wires the dispatch table and installs the voice result sink
func New(d Deps) (*Orchestrator, error) {
	if d.Gate == nil || d.Loader == nil || d.Store == nil {
		return nil, errors.New("orchestrator requires a gate, a loader and a store")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Navigator == nil {
		d.Navigator = navigator.New(d.Logger, nil)
	}
	if d.Voice == nil {
		d.Voice = voice.NewAdapter(nil, nil, speech.RecognizeOptions{}, d.Logger, nil)
	}

	o := &Orchestrator{
		gate:    d.Gate,
		loader:  d.Loader,
		nav:     d.Navigator,
		voice:   d.Voice,
		store:   d.Store,
		metrics: d.Metrics,
		logger:  d.Logger.Named("orchestrator"),
		now:     d.Clock,
	}

	dispatcher, err := command.NewDispatcher(o.intentTable())
	if err != nil {
		return nil, err
	}
	o.dispatcher = dispatcher
	o.voice.SetSink(o.onVoiceResult)
	return o, nil
}

func (o *Orchestrator) navigateTo(view session.ViewID) command.Handler {
	return func(context.Context) error {
		o.nav.Navigate(view)
		return nil
	}
}

func (o *Orchestrator) switchTo(s dashboard.Scenario) command.Handler {
	return func(ctx context.Context) error {
		return o.ChangeScenario(ctx, s)
	}
}

func (o *Orchestrator) intentTable() map[command.Intent]command.Handler {
	return map[command.Intent]command.Handler{
		command.IntentShowIncome:      o.navigateTo(session.ViewDashboard),
		command.IntentShowExpenses:    o.navigateTo(session.ViewDashboard),
		command.IntentOpenCompliance:  o.navigateTo(session.ViewSemaforo),
		command.IntentOpenAdvisor:     o.navigateTo(session.ViewCFO),
		command.IntentSwitchScenarioA: o.switchTo(dashboard.ScenarioA),
		command.IntentSwitchScenarioB: o.switchTo(dashboard.ScenarioB),
		command.IntentSwitchScenarioC: o.switchTo(dashboard.ScenarioC),
		command.IntentSync: func(context.Context) error {
			// the backend has no SAT sync endpoint yet
			o.logger.Info("SAT sync requested")
			return nil
		},
	}
}

func (o *Orchestrator) record(op string, err error) {
	if err == nil {
		return
	}
	rec := ErrorRecord{
		Operation: op,
		Code:      shared.CodeOf(err),
		Message:   err.Error(),
		At:        o.now(),
	}
	o.logger.Warn("operation failed",
		zap.String("operation", op),
		zap.String("code", rec.Code),
		zap.Error(err),
	)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, rec)
	if len(o.errs) > maxErrors {
		o.errs = o.errs[len(o.errs)-maxErrors:]
	}
}

func (o *Orchestrator) clearErrors() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = nil
}

// Errors returns the recorded failures, oldest first
func (o *Orchestrator) Errors() []ErrorRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]ErrorRecord(nil), o.errs...)
}

func (o *Orchestrator) requireSession() error {
	if !o.gate.State().IsAuthenticated() {
		return shared.Wrap(shared.ErrInvalidState, "sign in or enter demo mode first")
	}
	return nil
}

// Start resolves the persisted session and, when signed in, loads the
// default scenario. The returned error is the loader's startup failure.
func (o *Orchestrator) Start(ctx context.Context) error {
	st := o.gate.Resolve(ctx)
	o.logger.Info("session resolved",
		zap.String("status", string(st.Status)),
		zap.Bool("demo", st.Demo),
	)
	if !st.IsAuthenticated() {
		return nil
	}
	return o.initialize(ctx)
}

func (o *Orchestrator) initialize(ctx context.Context) error {
	err := o.loader.Initialize(ctx)
	o.record("initialize", err)
	return err
}

// Login signs in and loads the dashboard. A load failure after a successful
// sign-in is recorded, not returned.
func (o *Orchestrator) Login(ctx context.Context, creds session.Credentials) (session.AuthUser, error) {
	user, err := o.gate.Login(ctx, creds)
	if err != nil {
		o.record("login", err)
		return user, err
	}
	_ = o.initialize(ctx)
	return user, nil
}

// Register creates an account, signs in and loads the dashboard
func (o *Orchestrator) Register(ctx context.Context, p session.Profile) (session.AuthUser, error) {
	user, err := o.gate.Register(ctx, p)
	if err != nil {
		o.record("register", err)
		return user, err
	}
	_ = o.initialize(ctx)
	return user, nil
}

// SkipAuth enters demo mode and loads the dashboard
func (o *Orchestrator) SkipAuth(ctx context.Context) (session.AuthState, error) {
	st, err := o.gate.Skip(ctx)
	if err != nil {
		o.record("skip", err)
		return st, err
	}
	_ = o.initialize(ctx)
	return st, nil
}

// Logout stops voice, drops loaded data and clears the persisted markers.
// The theme survives.
func (o *Orchestrator) Logout(ctx context.Context) (session.AuthState, error) {
	o.voice.Stop()
	o.loader.Reset()
	o.nav.Reset()
	o.clearErrors()

	st, err := o.gate.Logout(ctx)
	o.record("logout", err)
	return st, err
}

// ChangeScenario loads the first company of s. Rejected while seeding.
func (o *Orchestrator) ChangeScenario(ctx context.Context, s dashboard.Scenario) error {
	err := o.requireSession()
	if err == nil {
		err = o.loader.LoadForScenario(ctx, s)
	}
	o.record("change_scenario", err)
	return err
}

// Seed creates demo data, then loads scenario (A when empty)
func (o *Orchestrator) Seed(ctx context.Context, s dashboard.Scenario) error {
	err := o.requireSession()
	if err == nil {
		err = o.loader.Seed(ctx, s)
	}
	o.record("seed", err)
	return err
}

// Reload refreshes the current company's datasets
func (o *Orchestrator) Reload(ctx context.Context) error {
	err := o.requireSession()
	if err == nil {
		err = o.loader.Reload(ctx)
	}
	o.record("reload", err)
	return err
}

// Navigate switches the active view; unknown ids are ignored
func (o *Orchestrator) Navigate(view session.ViewID) bool {
	return o.nav.Navigate(view)
}

// Dispatch runs the handler of intent, exactly as a pointer action would.
// Unknown intents are a no-op reported as false.
func (o *Orchestrator) Dispatch(ctx context.Context, intent command.Intent) (bool, error) {
	if intent.IsKnown() && o.metrics != nil {
		o.metrics.IntentMatched(intent.String())
	}
	handled, err := o.dispatcher.Dispatch(ctx, intent)
	if handled {
		o.logger.Debug("intent dispatched", zap.Stringer("intent", intent))
	}
	return handled, err
}

// onVoiceResult runs inside the adapter's emit section, so the intent is
// handed to a goroutine and Stop never waits on a load.
func (o *Orchestrator) onVoiceResult(ctx context.Context, r voice.Result) {
	if r.Err != nil {
		o.record("voice", r.Err)
		return
	}
	if !r.Intent.IsKnown() {
		return
	}
	// the session context is cancelled once the result is out
	ctx = context.WithoutCancel(ctx)
	o.intents.Add(1)
	go func() {
		defer o.intents.Done()
		if _, err := o.Dispatch(ctx, r.Intent); err != nil {
			logger.L(ctx).Debug("voice intent failed", zap.Stringer("intent", r.Intent), zap.Error(err))
		}
	}()
}

// WaitVoice blocks until running voice sessions and the intents they
// emitted have finished
func (o *Orchestrator) WaitVoice() {
	o.voice.Wait()
	o.intents.Wait()
}

// StartVoice opens a listening session. Seeding never blocks it.
func (o *Orchestrator) StartVoice(ctx context.Context) error {
	err := o.requireSession()
	if err == nil {
		err = o.voice.Start(ctx)
	}
	o.record("voice", err)
	return err
}

// StopVoice ends the listening session, if any
func (o *Orchestrator) StopVoice() {
	o.voice.Stop()
}

// SendChatMessage asks the CFO advisor about the current company
func (o *Orchestrator) SendChatMessage(ctx context.Context, message string) (*dashboard.ChatReply, error) {
	if err := o.requireSession(); err != nil {
		return nil, err
	}
	reply, err := o.loader.SendChatMessage(ctx, message)
	o.record("chat", err)
	return reply, err
}

// CFDIs pages through the current company's invoices
func (o *Orchestrator) CFDIs(ctx context.Context, page, perPage int, tipo dashboard.CFDIType) (*dashboard.CFDIPage, error) {
	if err := o.requireSession(); err != nil {
		return nil, err
	}
	return o.loader.CFDIs(ctx, page, perPage, tipo)
}

// Predictions fetches the projections of the current company
func (o *Orchestrator) Predictions(ctx context.Context) (dashboard.Predictions, error) {
	if err := o.requireSession(); err != nil {
		return nil, err
	}
	return o.loader.Predictions(ctx)
}

// Credit fetches the credit readiness of the current company
func (o *Orchestrator) Credit(ctx context.Context) (dashboard.CreditInfo, error) {
	if err := o.requireSession(); err != nil {
		return nil, err
	}
	return o.loader.Credit(ctx)
}

// CurrentUser re-validates the signed-in account
func (o *Orchestrator) CurrentUser(ctx context.Context) (session.AuthUser, error) {
	return o.gate.CurrentUser(ctx)
}

// Theme returns the persisted theme, or the default one
func (o *Orchestrator) Theme(ctx context.Context) session.Theme {
	def, _ := session.LookupTheme(session.DefaultThemeID)
	id, err := o.store.Get(ctx, session.KeyTheme)
	if err != nil {
		if !errors.Is(err, session.ErrKeyNotFound) {
			o.logger.Warn("failed to read theme", zap.Error(err))
		}
		return def
	}
	if t, ok := session.LookupTheme(id); ok {
		return t
	}
	return def
}

// SetTheme persists a known theme id
func (o *Orchestrator) SetTheme(ctx context.Context, id string) (session.Theme, error) {
	t, ok := session.LookupTheme(id)
	if !ok {
		return session.Theme{}, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("unknown theme %q", id))
	}
	if err := o.store.Set(ctx, session.KeyTheme, t.ID); err != nil {
		return session.Theme{}, fmt.Errorf("persisting theme: %w", err)
	}
	return t, nil
}
