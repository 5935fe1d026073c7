package history

import "context"

// Repo persists report runs.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	// GetBySession returns the newest run of a session.
	GetBySession(ctx context.Context, sessionID string) (Record, error)
	// List returns runs newest first.
	List(ctx context.Context, limit, offset int) ([]Record, error)
}
