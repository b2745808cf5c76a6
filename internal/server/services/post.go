package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/dbx"
	"github.com/dberzins/inkwell/internal/server/models"
	"github.com/dberzins/inkwell/internal/server/repositories/repomanager"
)

// PostService implements post operations. Authorization is not re-checked
// here: the HTTP guard decides who may act before any mutating method is
// reached, and this layer only performs the act.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

// List returns all posts in insertion (id) order.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	result, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %v", err)
	}

	return result, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting post: %v", err)
	}

	return post, nil
}

// Create stores a new post authored by the given user. The author binding
// is set here once and is immutable afterward. A duplicate title surfaces
// as common.ErrorDuplicateTitle.
func (s *PostService) Create(ctx context.Context, title, subtitle, body, imageURL string, author *models.User) (*models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	post := &models.Post{
		Title:    title,
		Subtitle: subtitle,
		Body:     body,
		ImageURL: imageURL,
		AuthorID: author.ID,
	}

	created, err := repo.Create(ctx, post)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateTitle) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating post: %v", err)
	}

	return created, nil
}

// Update rewrites the mutable fields of an existing post inside a single
// transaction. Author and creation date are left untouched; edits do not
// bump the display date.
func (s *PostService) Update(ctx context.Context, id int64, title, subtitle, body, imageURL string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)

		post, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		post.Title = title
		post.Subtitle = subtitle
		post.Body = body
		post.ImageURL = imageURL

		return repo.Update(ctx, post)
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorDuplicateTitle) {
			return err
		}
		return fmt.Errorf("error updating post: %v", err)
	}

	return nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Posts(s.db)

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting post: %v", err)
	}

	return nil
}

// Author fetches the post's author by its stored author id, an explicit
// repository-level join instead of an object-graph back-reference.
func (s *PostService) Author(ctx context.Context, post *models.Post) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("error resolving author: %v", err)
	}

	return user, nil
}
