package port

import (
	"context"

	"github.com/nikolayk812/oja-market/internal/domain"
)

// SessionListener receives the current session, or nil when signed out.
type SessionListener func(session *domain.Session)

type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	SignUp(ctx context.Context, email, password string) (domain.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession() *domain.Session
	// OnSessionChange registers listener and returns a function that
	// removes it.
	OnSessionChange(listener SessionListener) (unsubscribe func())
}

// TokenVerifier resolves a bearer token issued by an IdentityProvider.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.Session, error)
}
