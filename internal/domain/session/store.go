package session

import (
	"context"
	"errors"
)

// Persisted keys. Values are plain strings with no schema version.
const (
	KeyToken    = "poa_token"
	KeyUser     = "poa_user"
	KeyDemoMode = "poa_demo_mode"
	KeyTheme    = "poa-theme"
)

// ErrKeyNotFound is returned by Store.Get for a missing key
var ErrKeyNotFound = errors.New("session store: key not found")

// Store is the persisted key/value state shared with the client environment.
// Init is called once before use and Teardown on logout; every write touches
// only the key it names.
type Store interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Teardown(ctx context.Context, keys ...string) error
	Close() error
}

// AuthKeys are the markers removed on logout
func AuthKeys() []string {
	return []string{KeyToken, KeyUser, KeyDemoMode}
}
