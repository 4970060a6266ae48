// Package voice runs single-shot speech sessions and turns their transcript
// into a command intent.
package voice

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/domain/command"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/logger"
)

// ResultKind tags the single outcome of a session
type ResultKind string

const (
	ResultTranscript  ResultKind = "transcript"
	ResultError       ResultKind = "error"
	ResultUnsupported ResultKind = "unsupported"
)

// Result is emitted at most once per session
type Result struct {
	SessionID  string         `json:"session_id"`
	Kind       ResultKind     `json:"kind"`
	Transcript string         `json:"transcript,omitempty"`
	Intent     command.Intent `json:"intent"`
	Err        error          `json:"-"`
}

// State is the VoiceSession visible to the presentation layer
type State struct {
	Supported  bool           `json:"supported"`
	Listening  bool           `json:"listening"`
	SessionID  string         `json:"session_id,omitempty"`
	Transcript string         `json:"transcript"`
	LastIntent command.Intent `json:"last_intent"`
	LastError  string         `json:"last_error,omitempty"`
}

// ResultSink receives the single result of every session that was not
// stopped. It runs while Stop is held off, so it must return quickly and
// must not call Stop.
type ResultSink func(ctx context.Context, r Result)

// Metrics receives session outcomes
type Metrics interface {
	VoiceSessionEnded(outcome string)
}

// Adapter wraps a Recognizer. Each Start opens a new session; Stop and a
// newer session both invalidate the previous one.
type Adapter struct {
	recognizer speech.Recognizer
	matcher    *command.Matcher
	opts       speech.RecognizeOptions
	logger     *zap.Logger
	metrics    Metrics

	emitMu sync.Mutex
	mu     sync.Mutex
	sink   ResultSink
	token  uint64
	cancel context.CancelFunc
	state  State
	wg     sync.WaitGroup
}

// NewAdapter creates an idle adapter. A nil recognizer means voice input is
// not supported in this environment. Options without a locale become a
// single-shot es-MX session.
func NewAdapter(r speech.Recognizer, m *command.Matcher, opts speech.RecognizeOptions, logger *zap.Logger, metrics Metrics) *Adapter {
	if opts.Locale == "" {
		opts = speech.SingleShot(opts.Timeout)
	}
	if m == nil {
		m = command.NewMatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		recognizer: r,
		matcher:    m,
		opts:       opts,
		logger:     logger.Named("voice"),
		metrics:    metrics,
	}
	a.state.Supported = a.supported()
	return a
}

// SetSink installs the result receiver
func (a *Adapter) SetSink(sink ResultSink) {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()
	a.sink = sink
}

func (a *Adapter) supported() bool {
	return a.recognizer != nil && a.recognizer.Available()
}

// State returns a copy of the current session
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Start begins listening. It is a no-op while a session is listening.
// The session outlives ctx's cancellation but keeps its values.
func (a *Adapter) Start(ctx context.Context) error {
	if !a.supported() {
		a.mu.Lock()
		a.state.LastError = shared.ErrVoiceUnsupported.Message
		a.mu.Unlock()
		a.observe(string(ResultUnsupported))
		return shared.ErrVoiceUnsupported
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Listening {
		return nil
	}

	a.token++
	tok := a.token
	id := uuid.NewString()
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sessCtx, _ = logger.WithSessionID(sessCtx, a.logger, id)
	a.cancel = cancel
	a.state = State{
		Supported:  true,
		Listening:  true,
		SessionID:  id,
		LastIntent: command.IntentUnknown,
	}

	a.wg.Add(1)
	go a.run(sessCtx, tok, id)
	a.logger.Debug("voice session started", zap.String("session_id", id))
	return nil
}

func (a *Adapter) run(ctx context.Context, tok uint64, id string) {
	defer a.wg.Done()

	text, err := a.recognizer.Recognize(ctx, a.opts)

	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if tok != a.token {
		a.mu.Unlock()
		a.logger.Debug("dropping result of a stopped session", zap.String("session_id", id))
		return
	}
	a.state.Listening = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	res := Result{SessionID: id, Intent: command.IntentUnknown}
	switch {
	case err == nil:
		res.Kind = ResultTranscript
		res.Transcript = text
		res.Intent = a.matcher.Match(text)
		a.state.Transcript = text
		a.state.LastIntent = res.Intent
	case errors.Is(err, shared.ErrVoiceUnsupported):
		res.Kind = ResultUnsupported
		res.Err = shared.ErrVoiceUnsupported
		a.state.LastError = shared.ErrVoiceUnsupported.Message
	default:
		res.Kind = ResultError
		res.Err = shared.Wrap(shared.ErrVoiceError, err.Error())
		a.state.LastError = res.Err.Error()
	}
	sink := a.sink
	a.mu.Unlock()

	a.observe(string(res.Kind))
	if res.Err != nil {
		a.logger.Info("voice session ended without transcript", zap.String("session_id", id), zap.Error(res.Err))
	} else {
		a.logger.Info("voice transcript",
			zap.String("session_id", id),
			zap.String("transcript", text),
			zap.Stringer("intent", res.Intent),
		)
	}
	if sink != nil {
		sink(ctx, res)
	}
}

// Stop ends the current session early. Safe when idle. Once it returns the
// stopped session emits nothing.
func (a *Adapter) Stop() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.Listening {
		return
	}
	a.token++
	a.state.Listening = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.observe("stopped")
	a.logger.Debug("voice session stopped", zap.String("session_id", a.state.SessionID))
}

// Wait blocks until every started session goroutine has returned
func (a *Adapter) Wait() {
	a.wg.Wait()
}

func (a *Adapter) observe(outcome string) {
	if a.metrics != nil {
		a.metrics.VoiceSessionEnded(outcome)
	}
}
