package dto

// LoginRequest signs in with an existing account
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// ScenarioRequest switches the demo scenario
type ScenarioRequest struct {
	Scenario string `json:"scenario" binding:"required"`
}

// SeedQuery optionally restricts seeding to one scenario
type SeedQuery struct {
	Scenario string `form:"scenario"`
}

// NavigateRequest selects a dashboard section
type NavigateRequest struct {
	View string `json:"view" binding:"required"`
}

// NavigateResponse reports whether the view changed
type NavigateResponse struct {
	Navigated  bool   `json:"navigated"`
	ActiveView string `json:"active_view"`
}

// UtteranceRequest delivers a final transcript to the listening session
type UtteranceRequest struct {
	Text string `json:"text" binding:"required"`
}

// ChatRequest asks the CFO advisor
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// CFDIQuery pages through invoices
type CFDIQuery struct {
	Page    int    `form:"page,default=1"`
	PerPage int    `form:"per_page,default=20"`
	Tipo    string `form:"tipo"`
}

// ThemeRequest selects a theme
type ThemeRequest struct {
	ID string `json:"id" binding:"required"`
}
