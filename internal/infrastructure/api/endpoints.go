package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
)

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SeedResult is the body of POST /api/seed
type SeedResult struct {
	Message  string         `json:"message"`
	Scenario string         `json:"scenario"`
	Stats    map[string]any `json:"stats"`
}

// Health checks backend reachability
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.getJSON(ctx, "/health", "/health", nil, &out)
	return out, err
}

// Seed creates demo data; an empty scenario seeds all of them
func (c *Client) Seed(ctx context.Context, scenario dashboard.Scenario) (SeedResult, error) {
	var q url.Values
	if scenario != "" {
		q = url.Values{"scenario": {string(scenario)}}
	}
	var out SeedResult
	err := c.postJSON(ctx, "/api/seed", "/api/seed", q, &out)
	return out, err
}

// ListCompanies returns the companies, optionally filtered by demo scenario
func (c *Client) ListCompanies(ctx context.Context, scenario dashboard.Scenario) ([]dashboard.Company, error) {
	var q url.Values
	if scenario != "" {
		q = url.Values{"scenario": {string(scenario)}}
	}
	var out []dashboard.Company
	if err := c.getJSON(ctx, "/api/companies", "/api/companies", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dashboard returns the dashboard aggregate of a company
func (c *Client) Dashboard(ctx context.Context, companyID int64) (*dashboard.DashboardStats, error) {
	var out dashboard.DashboardStats
	if err := c.getJSON(ctx, "/api/dashboard/{id}", fmt.Sprintf("/api/dashboard/%d", companyID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthScore returns the score breakdown of a company
func (c *Client) HealthScore(ctx context.Context, companyID int64) (*dashboard.HealthScore, error) {
	var out dashboard.HealthScore
	path := fmt.Sprintf("/api/companies/%d/health-score", companyID)
	if err := c.getJSON(ctx, "/api/companies/{id}/health-score", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CFDIs lists one page of a company's invoices
func (c *Client) CFDIs(ctx context.Context, companyID int64, page, perPage int, tipo dashboard.CFDIType) (*dashboard.CFDIPage, error) {
	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if tipo != "" {
		q.Set("tipo", string(tipo))
	}
	var out dashboard.CFDIPage
	path := fmt.Sprintf("/api/companies/%d/cfdis", companyID)
	if err := c.getJSON(ctx, "/api/companies/{id}/cfdis", path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat asks the virtual CFO about a company
func (c *Client) Chat(ctx context.Context, companyID int64, message string) (*dashboard.ChatReply, error) {
	q := url.Values{
		"message":    {message},
		"company_id": {strconv.FormatInt(companyID, 10)},
	}
	var out dashboard.ChatReply
	if err := c.postJSON(ctx, "/api/cfo/chat", "/api/cfo/chat", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Predictions returns the cash-flow projections of a company
func (c *Client) Predictions(ctx context.Context, companyID int64) (dashboard.Predictions, error) {
	var out dashboard.Predictions
	path := fmt.Sprintf("/api/predictions/%d", companyID)
	if err := c.getJSON(ctx, "/api/predictions/{id}", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Credit returns the credit eligibility of a company
func (c *Client) Credit(ctx context.Context, companyID int64) (dashboard.CreditInfo, error) {
	var out dashboard.CreditInfo
	path := fmt.Sprintf("/api/credit/%d", companyID)
	if err := c.getJSON(ctx, "/api/credit/{id}", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	q := url.Values{
		"email":    {creds.Email},
		"password": {creds.Password},
	}
	var out session.AuthResult
	if err := c.postJSON(ctx, "/api/auth/login", "/api/auth/login", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token
func (c *Client) Register(ctx context.Context, p session.Profile) (*session.AuthResult, error) {
	q := url.Values{
		"email":     {p.Email},
		"password":  {p.Password},
		"full_name": {p.FullName},
	}
	var out session.AuthResult
	if err := c.postJSON(ctx, "/api/auth/register", "/api/auth/register", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account owning token
func (c *Client) Me(ctx context.Context, token string) (*session.AuthUser, error) {
	req := Request{
		Endpoint: "/api/auth/me",
		Method:   http.MethodGet,
		Path:     "/api/auth/me",
		Headers:  map[string]string{"Authorization": "Bearer " + token},
	}
	var out session.AuthUser
	if err := c.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
