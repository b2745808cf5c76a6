// Package services contains server-side business logic. This file implements
// UserService, which handles registration and credential verification.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/server/auth"
	"github.com/dberzins/inkwell/internal/server/models"
	"github.com/dberzins/inkwell/internal/server/repositories/repomanager"
)

// UserService provides account operations:
//   - Register: hash the password and create the user
//   - Login: verify submitted credentials
//   - GetByID: resolve a stored user (used for session caller lookup)
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewUserService constructs a UserService over the given repositories.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Register creates a new user from the submitted name, email, and plaintext
// password. The password is bcrypt-hashed before it reaches storage. A
// duplicate email surfaces as common.ErrorDuplicateEmail.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

// Login verifies the submitted credentials. The email lookup always happens
// before password verification, and the two failures stay distinct:
// common.ErrorUnknownEmail when no account carries the email,
// common.ErrorWrongPassword when the hash does not match.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnknownEmail
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrorWrongPassword
	}

	return user, nil
}

// GetByID resolves a user by id. common.ErrorNotFound passes through so
// callers can downgrade a dangling session to anonymous.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}
