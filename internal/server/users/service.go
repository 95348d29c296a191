// Package users implements account registration and credential
// verification on top of the users repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvolkovs/filevault/internal/common"
	"github.com/dvolkovs/filevault/internal/dbx"
	"github.com/dvolkovs/filevault/internal/server/auth"
	"github.com/dvolkovs/filevault/internal/server/models"
	"github.com/dvolkovs/filevault/internal/server/repositories/repomanager"
)

// dummySalt keeps the unknown-email path doing the same digest work as
// the wrong-password path, so response timing does not reveal whether an
// email is registered.
var dummySalt = auth.NewSalt()

type Service struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager) *Service {
	return &Service{db: db, repos: repos}
}

// Register creates an account. Missing fields come back as
// common.ErrInvalidInput, a taken email as common.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, common.ErrInvalidInput
	}

	salt := auth.NewSalt()
	user := &models.User{
		Email:        email,
		PasswordHash: auth.DigestPassword(password, salt),
		Salt:         salt,
	}

	user, err := s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Authenticate verifies email+password and returns the user id. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			auth.DigestPassword(password, dummySalt)
			return "", common.ErrUnauthorized
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return "", common.ErrUnauthorized
	}
	return user.ID, nil
}

// GetByID returns the account behind an authenticated session.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

// Stats reports the totals surfaced by the stats endpoint. Both counts
// come from one read-only transaction so they describe the same moment.
func (s *Service) Stats(ctx context.Context) (userCount, fileCount int64, err error) {
	err = dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if userCount, err = s.repos.Users(tx).Count(ctx); err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		if fileCount, err = s.repos.Files(tx).Count(ctx); err != nil {
			return fmt.Errorf("counting files: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return userCount, fileCount, nil
}
