// Package auth decides whether a dashboard session may proceed: from
// persisted credentials, an explicit demo opt-in, or a fresh login.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/api"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// API is the part of the backend client the gate uses
type API interface {
	Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error)
	Register(ctx context.Context, p session.Profile) (*session.AuthResult, error)
	Me(ctx context.Context, token string) (*session.AuthUser, error)
}

// Metrics receives auth transitions
type Metrics interface {
	AuthTransition(status string)
}

// Option configures a Gate
type Option func(*Gate)

// WithMetrics records every transition
func WithMetrics(m Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithClock overrides time.Now for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// Gate owns AuthState. Operations that change it are serialized; reads
// never wait on the network.
type Gate struct {
	store    session.Store
	api      API
	validate *validator.Validate
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time

	opMu  sync.Mutex
	mu    sync.RWMutex
	state session.AuthState
	token string
}

// NewGate creates a gate in the Unknown state
func NewGate(store session.Store, client API, logger *zap.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		store:    store,
		api:      client,
		validate: validator.New(),
		logger:   logger.Named("auth"),
		now:      time.Now,
		state:    session.Unknown(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current auth state
func (g *Gate) State() session.AuthState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Token returns the bearer token of the signed-in account, or ""
func (g *Gate) Token(context.Context) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

func (g *Gate) set(state session.AuthState, token string) {
	g.mu.Lock()
	g.state = state
	g.token = token
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.AuthTransition(string(state.Status))
	}
}

// Resolve reads the persisted markers once. Later calls return the
// already resolved state.
func (g *Gate) Resolve(ctx context.Context) session.AuthState {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if st := g.State(); st.IsResolved() {
		return st
	}

	token := g.read(ctx, session.KeyToken)
	rawUser := g.read(ctx, session.KeyUser)

	if token != "" && rawUser != "" {
		var user session.AuthUser
		switch {
		case tokenExpired(token, g.now()):
			g.logger.Info("persisted token expired, clearing credentials")
			if err := g.store.Delete(ctx, session.KeyToken, session.KeyUser); err != nil {
				g.logger.Warn("failed to clear expired credentials", zap.Error(err))
			}
		case json.Unmarshal([]byte(rawUser), &user) != nil:
			g.logger.Warn("persisted user is not valid JSON, ignoring credentials")
		default:
			g.set(session.Authenticated(user), token)
			g.logger.Info("session resolved from persisted credentials", zap.Int64("user_id", user.ID))
			return g.State()
		}
	}

	if g.read(ctx, session.KeyDemoMode) == "true" {
		g.set(session.Demo(), "")
		g.logger.Info("session resolved in demo mode")
		return g.State()
	}

	g.set(session.Unauthenticated(), "")
	return g.State()
}

func (g *Gate) read(ctx context.Context, key string) string {
	v, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, session.ErrKeyNotFound) {
			g.logger.Warn("failed to read session key", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return v
}

// tokenExpired reports whether token is a JWT whose exp is not after now.
// Opaque tokens never expire here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func (g *Gate) requireSignedOut() error {
	if g.State().IsAuthenticated() {
		return shared.Wrap(shared.ErrInvalidState, "already signed in")
	}
	return nil
}

func (g *Gate) validateInput(v any) error {
	if err := g.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return shared.Wrap(shared.ErrInvalidInput, err.Error())
	}
	return nil
}

// Login signs in with an existing account
func (g *Gate) Login(ctx context.Context, creds session.Credentials) (session.AuthUser, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireSignedOut(); err != nil {
		return session.AuthUser{}, err
	}
	if err := g.validateInput(creds); err != nil {
		return session.AuthUser{}, err
	}

	res, err := g.api.Login(ctx, creds)
	if err != nil {
		g.logger.Warn("login failed", zap.String("email", creds.Email), zap.Error(err))
		return session.AuthUser{}, classifyLogin(err)
	}
	return g.persist(ctx, res)
}

// Register creates an account and signs in with it
func (g *Gate) Register(ctx context.Context, p session.Profile) (session.AuthUser, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireSignedOut(); err != nil {
		return session.AuthUser{}, err
	}
	if err := g.validateInput(p); err != nil {
		return session.AuthUser{}, err
	}

	res, err := g.api.Register(ctx, p)
	if err != nil {
		g.logger.Warn("registration failed", zap.String("email", p.Email), zap.Error(err))
		return session.AuthUser{}, classifyRegister(err)
	}
	return g.persist(ctx, res)
}

func (g *Gate) persist(ctx context.Context, res *session.AuthResult) (session.AuthUser, error) {
	rawUser, err := json.Marshal(res.User)
	if err != nil {
		return session.AuthUser{}, fmt.Errorf("encoding user: %w", err)
	}
	if err := g.store.Set(ctx, session.KeyToken, res.AccessToken); err != nil {
		return session.AuthUser{}, fmt.Errorf("persisting token: %w", err)
	}
	if err := g.store.Set(ctx, session.KeyUser, string(rawUser)); err != nil {
		return session.AuthUser{}, fmt.Errorf("persisting user: %w", err)
	}

	g.set(session.Authenticated(res.User), res.AccessToken)
	g.logger.Info("signed in", zap.Int64("user_id", res.User.ID))
	return res.User, nil
}

// Skip enters demo mode without an identity
func (g *Gate) Skip(ctx context.Context) (session.AuthState, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireSignedOut(); err != nil {
		return g.State(), err
	}
	if err := g.store.Set(ctx, session.KeyDemoMode, "true"); err != nil {
		return g.State(), fmt.Errorf("persisting demo flag: %w", err)
	}
	g.set(session.Demo(), "")
	g.logger.Info("entered demo mode")
	return g.State(), nil
}

// Logout clears token, user and demo markers. The in-memory state becomes
// Unauthenticated even when the store fails; the error is still returned.
func (g *Gate) Logout(ctx context.Context) (session.AuthState, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	err := g.store.Teardown(ctx, session.AuthKeys()...)
	g.set(session.Unauthenticated(), "")
	if err != nil {
		g.logger.Error("failed to clear persisted credentials", zap.Error(err))
		return g.State(), fmt.Errorf("clearing credentials: %w", err)
	}
	g.logger.Info("signed out")
	return g.State(), nil
}

// CurrentUser re-validates the token against the backend and refreshes
// the persisted user
func (g *Gate) CurrentUser(ctx context.Context) (session.AuthUser, error) {
	token := g.Token(ctx)
	if token == "" {
		return session.AuthUser{}, shared.Wrap(shared.ErrInvalidState, "no account is signed in")
	}

	user, err := g.api.Me(ctx, token)
	if err != nil {
		return session.AuthUser{}, classifyLogin(err)
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()
	// a logout may have happened while the request was in flight
	if g.Token(ctx) != token {
		return session.AuthUser{}, shared.Wrap(shared.ErrInvalidState, "session changed")
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := g.store.Set(ctx, session.KeyUser, string(raw)); err != nil {
			g.logger.Warn("failed to refresh persisted user", zap.Error(err))
		}
	}
	g.mu.Lock()
	g.state = session.Authenticated(*user)
	g.mu.Unlock()
	return *user, nil
}

func classifyLogin(err error) error {
	switch status := api.StatusOf(err); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return shared.Wrap(shared.ErrInvalidCredentials, api.DetailOf(err))
	case status == http.StatusUnprocessableEntity:
		return shared.Wrap(shared.ErrInvalidInput, api.DetailOf(err))
	case status != 0:
		return shared.Wrap(shared.ErrNetworkError, api.DetailOf(err))
	default:
		return shared.Wrap(shared.ErrNetworkError, err.Error())
	}
}

func classifyRegister(err error) error {
	switch status := api.StatusOf(err); {
	case status == http.StatusBadRequest || status == http.StatusConflict:
		return shared.Wrap(shared.ErrDuplicateRegistration, api.DetailOf(err))
	case status == http.StatusUnprocessableEntity:
		return shared.Wrap(shared.ErrInvalidInput, api.DetailOf(err))
	case status != 0:
		return shared.Wrap(shared.ErrNetworkError, api.DetailOf(err))
	default:
		return shared.Wrap(shared.ErrNetworkError, err.Error())
	}
}
