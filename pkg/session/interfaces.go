package session

import (
	"context"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

// StateReader answers "who is logged in" and notifies on change.
// Route guards and views should depend on this rather than *Manager.
type StateReader interface {
	CurrentIdentity(ctx context.Context) identity.Snapshot
	Current() identity.Snapshot
	Subscribe(fn func(identity.Snapshot)) (unsubscribe func())
}

// AccountManager establishes, ends, and creates sessions.
type AccountManager interface {
	Login(ctx context.Context, credentials identity.Credentials) identity.Result
	Logout(ctx context.Context)
	Register(ctx context.Context, email string, password string) identity.Result
}

// Provider exposes both capabilities.
type Provider interface {
	StateReader
	AccountManager
}

// Compile-time checks.
var _ StateReader = (*StateCache)(nil)
var _ AccountManager = (*Coordinator)(nil)
var _ Provider = (*Manager)(nil)
