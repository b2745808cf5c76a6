package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/dbx"
	"github.com/dberzins/inkwell/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {

	query :=
		`INSERT INTO sessions (id, user_id, expires_at)
         VALUES ($1, $2, $3)
		 `

	_, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.ExpiresAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	query :=
		`SELECT id, user_id, flashes, expires_at, created_at FROM sessions
		 WHERE id = $1
		 `

	session := &models.Session{}
	var flashes []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &flashes, &session.ExpiresAt, &session.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(flashes, &session.Flashes); err != nil {
		return nil, fmt.Errorf("flashes decode error: %w", err)
	}

	return session, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM sessions
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// AppendFlash appends a single JSON string to the flashes array in place;
// jsonb || jsonb concatenation keeps the operation a single statement.
func (r *PostgresRepository) AppendFlash(ctx context.Context, id string, message string) error {
	encoded, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("flash encode error: %w", err)
	}

	query :=
		`UPDATE sessions SET flashes = flashes || $2::jsonb
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, string(encoded))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// DrainFlashes clears the array and returns what it held before the
// clear. The row is locked for the duration of the statement, so two
// concurrent drains cannot both see the messages.
func (r *PostgresRepository) DrainFlashes(ctx context.Context, id string) ([]string, error) {
	query :=
		`UPDATE sessions s SET flashes = '[]'::jsonb
		 FROM (SELECT id, flashes FROM sessions WHERE id = $1 FOR UPDATE) old
		 WHERE s.id = old.id
		 RETURNING old.flashes
		 `

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var flashes []string
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil, fmt.Errorf("flashes decode error: %w", err)
	}

	return flashes, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query :=
		`DELETE FROM sessions
		 WHERE expires_at < now()
		 `

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return affected, nil
}
