// Package testutil provides an in-memory POA backend for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/api"
)

// Company builds a fixture company tagged with scenario
func Company(id int64, scenario dashboard.Scenario) dashboard.Company {
	s := string(scenario)
	return dashboard.Company{
		ID:           id,
		RFC:          gofakeit.LetterN(4) + gofakeit.DigitN(6),
		RazonSocial:  gofakeit.Company(),
		DemoScenario: &s,
		IngresosMes:  decimal.NewFromFloat(gofakeit.Price(1000, 900000)).Round(2),
		EgresosMes:   decimal.NewFromFloat(gofakeit.Price(1000, 900000)).Round(2),
		HealthScore:  gofakeit.Number(30, 95),
	}
}

// Stats builds the dashboard aggregate for a company; HealthScore carries
// the id so tests can tell which company a commit came from
func Stats(companyID int64, score int, semaforo ...dashboard.SemaforoState) *dashboard.DashboardStats {
	s := &dashboard.DashboardStats{
		HealthScore: score,
		IngresosMes: decimal.NewFromInt(companyID * 1000),
		TotalCFDIs:  int(companyID),
	}
	for i, st := range semaforo {
		s.Semaforo = append(s.Semaforo, dashboard.SemaforoItem{Nombre: fmt.Sprintf("check-%d", i), Estado: st})
	}
	return s
}

// Backend is a fake of the POA REST API. Calls can be held on a gate to
// force a completion order.
type Backend struct {
	mu sync.Mutex

	Down        bool
	companies   []dashboard.Company
	stats       map[int64]*dashboard.DashboardStats
	scores      map[int64]*dashboard.HealthScore
	seedData    []dashboard.Company
	errs        map[string]error
	gates       map[string]chan struct{}
	users       map[string]session.AuthUser
	passwords   map[string]string
	nextUserID  int64
	calls       map[string]int
	SeedCalls   atomic.Int32
	ChatHistory []string
}

// NewBackend creates an empty backend
func NewBackend() *Backend {
	return &Backend{
		stats:      map[int64]*dashboard.DashboardStats{},
		scores:     map[int64]*dashboard.HealthScore{},
		errs:       map[string]error{},
		gates:      map[string]chan struct{}{},
		users:      map[string]session.AuthUser{},
		passwords:  map[string]string{},
		calls:      map[string]int{},
		nextUserID: 1,
	}
}

// WithCompany adds a company with its datasets
func (b *Backend) WithCompany(c dashboard.Company, stats *dashboard.DashboardStats) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.companies = append(b.companies, c)
	b.stats[c.ID] = stats
	b.scores[c.ID] = &dashboard.HealthScore{
		ScoreTotal: stats.HealthScore,
		Componentes: []dashboard.ScoreComponent{
			{Nombre: fmt.Sprintf("Liquidez-%d", c.ID), Valor: decimal.NewFromInt(int64(stats.HealthScore)), Peso: "30%"},
		},
	}
	return b
}

// WithSeedData sets the companies a seed call creates
func (b *Backend) WithSeedData(companies ...dashboard.Company) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seedData = companies
	return b
}

// WithUser registers an account
func (b *Backend) WithUser(email, password, fullName string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addUser(email, password, fullName)
	return b
}

func (b *Backend) addUser(email, password, fullName string) session.AuthUser {
	u := session.AuthUser{ID: b.nextUserID, Email: email, FullName: fullName, Role: "owner"}
	b.nextUserID++
	b.users[email] = u
	b.passwords[email] = password
	return u
}

// FailOn makes the named call return err until cleared with nil
func (b *Backend) FailOn(call string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.errs, call)
		return
	}
	b.errs[call] = err
}

// Hold blocks the named call until the returned release func runs
func (b *Backend) Hold(call string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[call] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Calls reports how often the named call was made
func (b *Backend) Calls(call string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[call]
}

func (b *Backend) enter(ctx context.Context, call string) error {
	b.mu.Lock()
	b.calls[call]++
	gate := b.gates[call]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", api.ErrTransport, ctx.Err())
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Down {
		return fmt.Errorf("%w: connection refused", api.ErrTransport)
	}
	return b.errs[call]
}

func (b *Backend) Health(ctx context.Context) (api.HealthStatus, error) {
	if err := b.enter(ctx, "health"); err != nil {
		return api.HealthStatus{}, err
	}
	return api.HealthStatus{Status: "healthy", Version: "test"}, nil
}

func (b *Backend) Seed(ctx context.Context, scenario dashboard.Scenario) (api.SeedResult, error) {
	b.SeedCalls.Add(1)
	if err := b.enter(ctx, "seed"); err != nil {
		return api.SeedResult{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.seedData {
		if scenario != "" && !c.InScenario(scenario) {
			continue
		}
		b.companies = append(b.companies, c)
		b.stats[c.ID] = Stats(c.ID, c.HealthScore)
		b.scores[c.ID] = &dashboard.HealthScore{ScoreTotal: c.HealthScore}
	}
	label := string(scenario)
	if label == "" {
		label = "all"
	}
	return api.SeedResult{Message: "Datos de demo creados exitosamente", Scenario: label}, nil
}

// ListCompanies holds on "companies" for an unfiltered list and on
// "companies:<scenario>" for a filtered one
func (b *Backend) ListCompanies(ctx context.Context, scenario dashboard.Scenario) ([]dashboard.Company, error) {
	call := "companies"
	if scenario != "" {
		call += ":" + string(scenario)
	}
	if err := b.enter(ctx, call); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []dashboard.Company
	for _, c := range b.companies {
		if scenario == "" || c.InScenario(scenario) {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

// Dashboard holds on "dashboard:<id>"
func (b *Backend) Dashboard(ctx context.Context, id int64) (*dashboard.DashboardStats, error) {
	if err := b.enter(ctx, fmt.Sprintf("dashboard:%d", id)); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stats[id]
	if !ok {
		return nil, &api.APIError{StatusCode: 404, Detail: "Empresa no encontrada"}
	}
	return s.Clone(), nil
}

// HealthScore holds on "health-score:<id>"
func (b *Backend) HealthScore(ctx context.Context, id int64) (*dashboard.HealthScore, error) {
	if err := b.enter(ctx, fmt.Sprintf("health-score:%d", id)); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.scores[id]
	if !ok {
		return nil, &api.APIError{StatusCode: 404, Detail: "Score no encontrado"}
	}
	out := *s
	out.Componentes = append([]dashboard.ScoreComponent(nil), s.Componentes...)
	return &out, nil
}

func (b *Backend) CFDIs(ctx context.Context, id int64, page, perPage int, tipo dashboard.CFDIType) (*dashboard.CFDIPage, error) {
	if err := b.enter(ctx, "cfdis"); err != nil {
		return nil, err
	}
	out := &dashboard.CFDIPage{Total: 2, Page: page, PerPage: perPage}
	for i := 0; i < 2; i++ {
		t := dashboard.CFDIIngreso
		if i%2 == 1 {
			t = dashboard.CFDIEgreso
		}
		if tipo != "" && t != tipo {
			continue
		}
		out.CFDIs = append(out.CFDIs, dashboard.CFDI{ID: id*100 + int64(i), UUID: gofakeit.UUID(), TipoComprobante: t})
	}
	return out, nil
}

func (b *Backend) Chat(ctx context.Context, id int64, message string) (*dashboard.ChatReply, error) {
	if err := b.enter(ctx, "chat"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.ChatHistory = append(b.ChatHistory, message)
	b.mu.Unlock()
	return &dashboard.ChatReply{Response: fmt.Sprintf("empresa %d: %s", id, message), Sources: []string{"CFDIs"}}, nil
}

func (b *Backend) Predictions(ctx context.Context, id int64) (dashboard.Predictions, error) {
	if err := b.enter(ctx, "predictions"); err != nil {
		return nil, err
	}
	return dashboard.Predictions(fmt.Sprintf(`{"company_id":%d}`, id)), nil
}

func (b *Backend) Credit(ctx context.Context, id int64) (dashboard.CreditInfo, error) {
	if err := b.enter(ctx, "credit"); err != nil {
		return nil, err
	}
	return dashboard.CreditInfo(fmt.Sprintf(`{"company_id":%d,"elegible":true}`, id)), nil
}

func (b *Backend) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	if err := b.enter(ctx, "login"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[creds.Email]
	if !ok || b.passwords[creds.Email] != creds.Password {
		return nil, &api.APIError{StatusCode: 401, Detail: "Credenciales incorrectas"}
	}
	return &session.AuthResult{AccessToken: "token-" + creds.Email, TokenType: "bearer", User: u}, nil
}

func (b *Backend) Register(ctx context.Context, p session.Profile) (*session.AuthResult, error) {
	if err := b.enter(ctx, "register"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[p.Email]; ok {
		return nil, &api.APIError{StatusCode: 400, Detail: "El email ya está registrado"}
	}
	u := b.addUser(p.Email, p.Password, p.FullName)
	return &session.AuthResult{AccessToken: "token-" + p.Email, TokenType: "bearer", User: u}, nil
}

func (b *Backend) Me(ctx context.Context, token string) (*session.AuthUser, error) {
	if err := b.enter(ctx, "me"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for email, u := range b.users {
		if token == "token-"+email {
			out := u
			return &out, nil
		}
	}
	return nil, &api.APIError{StatusCode: 401, Detail: "Token inválido"}
}
