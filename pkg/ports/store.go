package ports

import (
	"context"

	"github.com/aretw0/tafel/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
type SessionStore interface {
	// Save persists the session for a given client ID.
	Save(ctx context.Context, clientID string, session *domain.Session) error

	// Load retrieves the session for a given client ID.
	// Returns domain.ErrSessionNotFound if the session does not exist or has expired.
	Load(ctx context.Context, clientID string) (*domain.Session, error)

	// Delete removes the session for a given client ID.
	Delete(ctx context.Context, clientID string) error

	// List returns the IDs of the active sessions.
	List(ctx context.Context) ([]string, error)
}
