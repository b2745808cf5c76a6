package posts

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	query :=
		`SELECT id, title, subtitle, body, image_url, author_id, created_at FROM posts
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.Title, &post.Subtitle, &post.Body,
			&post.ImageURL, &post.AuthorID, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query :=
		`SELECT id, title, subtitle, body, image_url, author_id, created_at FROM posts
		 WHERE id = $1
		 `

	post := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&post.ID, &post.Title, &post.Subtitle,
		&post.Body, &post.ImageURL, &post.AuthorID, &post.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// Create inserts the post and fills in the generated id and creation
// time. A posts.title unique violation maps to common.ErrorDuplicateTitle.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (title, subtitle, body, image_url, author_id)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Subtitle, post.Body, post.ImageURL, post.AuthorID).
		Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err, "posts_title_key") {
			return nil, common.ErrorDuplicateTitle
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// Update rewrites title, subtitle, body and image only. author_id and
// created_at are deliberately absent from the SET list.
func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) error {
	query :=
		`UPDATE posts SET title = $1, subtitle = $2, body = $3, image_url = $4
		 WHERE id = $5
		 `

	res, err := r.db.ExecContext(ctx, query,
		post.Title, post.Subtitle, post.Body, post.ImageURL, post.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err, "posts_title_key") {
			return common.ErrorDuplicateTitle
		}
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

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM posts
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
