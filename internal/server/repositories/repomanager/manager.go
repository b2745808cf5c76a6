package repomanager

import (
	"context"
	"database/sql"

	"github.com/dberzins/inkwell/internal/dbx"
	"github.com/dberzins/inkwell/internal/server/repositories/posts"
	"github.com/dberzins/inkwell/internal/server/repositories/sessions"
	"github.com/dberzins/inkwell/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
