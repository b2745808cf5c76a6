// Package users persists user credentials. Emails are unique at the
// storage level and matched case-sensitively; there is no update or
// delete; accounts only come into existence through registration.
package users

import (
	"context"

	"github.com/dberzins/inkwell/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
