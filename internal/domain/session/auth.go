// Package session models the state a dashboard session is made of: who is
// signed in, which view is visible, and which loads are in flight.
package session

// AuthStatus is the resolution status of the authentication gate
type AuthStatus string

const (
	AuthUnknown         AuthStatus = "unknown"
	AuthUnauthenticated AuthStatus = "unauthenticated"
	AuthAuthenticated   AuthStatus = "authenticated"
)

// AuthUser is the identity returned by the auth API
type AuthUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// AuthState is Unknown, Unauthenticated, or Authenticated with an optional
// user. A demo session is authenticated with no user.
type AuthState struct {
	Status AuthStatus `json:"status"`
	User   *AuthUser  `json:"user,omitempty"`
	Demo   bool       `json:"demo"`
}

// Unknown is the state before the persisted credentials were inspected
func Unknown() AuthState {
	return AuthState{Status: AuthUnknown}
}

// Unauthenticated is the state after logout or when nothing is persisted
func Unauthenticated() AuthState {
	return AuthState{Status: AuthUnauthenticated}
}

// Authenticated builds a signed-in state for a real account
func Authenticated(user AuthUser) AuthState {
	u := user
	return AuthState{Status: AuthAuthenticated, User: &u}
}

// Demo builds the identity-less demo state
func Demo() AuthState {
	return AuthState{Status: AuthAuthenticated, Demo: true}
}

func (s AuthState) IsAuthenticated() bool {
	return s.Status == AuthAuthenticated
}

func (s AuthState) IsResolved() bool {
	return s.Status != AuthUnknown && s.Status != ""
}

// DisplayName prefers the account name; demo sessions have none
func (s AuthState) DisplayName() string {
	if s.User != nil {
		return s.User.FullName
	}
	return ""
}

// Credentials are validated before any call to the auth API
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Profile registers a new account
type Profile struct {
	Credentials
	FullName string `json:"full_name" validate:"required,max=120"`
}

// AuthResult is what login and register return on success
type AuthResult struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        AuthUser `json:"user"`
}
