// Package posts persists blog posts. Titles are unique at the storage
// level; the author reference is set on create and never changed by
// Update. Listing returns posts in id (insertion) order.
package posts

import (
	"context"

	"github.com/dberzins/inkwell/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
}
