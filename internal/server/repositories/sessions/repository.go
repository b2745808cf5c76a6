// Package sessions persists login sessions and their flash messages.
// A session row is the authoritative server-side state behind the signed
// cookie token; deleting the row revokes the session.
package sessions

import (
	"context"

	"github.com/dberzins/inkwell/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error

	// AppendFlash queues a one-shot message on the session.
	AppendFlash(ctx context.Context, id string, message string) error

	// DrainFlashes atomically returns the queued messages in insertion
	// order and clears them, so a message is observed at most once.
	DrainFlashes(ctx context.Context, id string) ([]string, error)

	// DeleteExpired purges sessions whose expiry has passed and reports
	// how many rows were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
