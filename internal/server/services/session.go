package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/server/auth"
	sc "github.com/dberzins/inkwell/internal/server/config"
	"github.com/dberzins/inkwell/internal/server/models"
	"github.com/dberzins/inkwell/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// newSessionID is a seam for testing session id generation.
var newSessionID = uuid.NewString

// SessionService manages the login session lifecycle: it creates the
// server-side session row, wraps its id in a signed token for the cookie,
// resolves the current caller, and queues/drains flash messages.
//
// Every resolution failure short of a storage outage downgrades the caller
// to anonymous instead of failing the request: a bad token, a revoked or
// expired session, and a user that no longer exists all behave as "not
// logged in".
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secretKey   []byte
	validity    time.Duration
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		secretKey:   []byte(cfg.SecretKey),
		validity:    cfg.SessionValidityDuration,
	}
}

// Start creates a session bound to userID and returns the signed token to
// be set as the cookie value.
func (s *SessionService) Start(ctx context.Context, userID int64) (string, error) {
	id := newSessionID()
	repo := s.repomanager.Sessions(s.db)

	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.validity),
	}
	if err := repo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("error creating session: %v", err)
	}

	token, err := auth.GenerateToken(id, s.secretKey, s.validity)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// End revokes the session behind the token. An invalid token or an already
// deleted session is not an error: the caller ends up anonymous either way.
func (s *SessionService) End(ctx context.Context, token string) error {
	id, err := auth.GetSessionIDFromToken(token, s.secretKey)
	if err != nil {
		return nil
	}

	repo := s.repomanager.Sessions(s.db)
	if err := repo.Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting session: %v", err)
	}

	return nil
}

// Caller resolves the token to the bound user. A nil user with a nil error
// means anonymous. A non-nil error is reserved for storage failures, which
// abort the request rather than silently downgrading it.
func (s *SessionService) Caller(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	id, err := auth.GetSessionIDFromToken(token, s.secretKey)
	if err != nil {
		return nil, nil
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding session: %v", err)
	}

	if session.Expired(time.Now()) {
		_ = repo.Delete(ctx, session.ID)
		return nil, nil
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error resolving caller: %v", err)
	}

	return user, nil
}

// Flash queues a one-shot message for the session behind the token.
// Queuing onto an invalid or vanished session is a no-op: there is nobody
// left to read the message.
func (s *SessionService) Flash(ctx context.Context, token string, message string) error {
	id, err := auth.GetSessionIDFromToken(token, s.secretKey)
	if err != nil {
		return nil
	}

	repo := s.repomanager.Sessions(s.db)
	if err := repo.AppendFlash(ctx, id, message); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error queueing flash: %v", err)
	}

	return nil
}

// DrainFlashes returns the queued messages in insertion order and clears
// them. Draining twice in a row yields an empty result the second time.
func (s *SessionService) DrainFlashes(ctx context.Context, token string) ([]string, error) {
	id, err := auth.GetSessionIDFromToken(token, s.secretKey)
	if err != nil {
		return nil, nil
	}

	repo := s.repomanager.Sessions(s.db)
	flashes, err := repo.DrainFlashes(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error draining flashes: %v", err)
	}

	return flashes, nil
}

// Sweep purges expired session rows and reports how many were removed.
// Meant to run periodically from the app lifecycle.
func (s *SessionService) Sweep(ctx context.Context) (int64, error) {
	repo := s.repomanager.Sessions(s.db)

	n, err := repo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("error sweeping sessions: %v", err)
	}

	return n, nil
}
