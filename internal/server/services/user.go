// Package services holds the server-side application services sitting between
// the HTTP transport and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/repomanager"
)

// tokenByteSize is the entropy of an issued bearer token in bytes. The hex
// encoding doubles it on the wire.
const tokenByteSize = 32

// nowFunc is a seam for testing time-dependent behaviour.
var nowFunc = time.Now

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
	}
}

// Register creates a new account for the given email and issues its bearer
// token. The email is normalized before the uniqueness check, so addresses
// differing only in case map to the same account.
func (s *UserService) Register(ctx context.Context, email string) (*models.User, error) {

	email = common.NormalizeEmail(email)
	if err := common.ValidateEmail(email); err != nil {
		return nil, common.ErrorInvalidEmail
	}

	token, err := common.MakeRandHexString(tokenByteSize)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:  email,
		Token:  token,
		Status: models.UserStatusActive,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login looks an account up by email and returns it with its token, stamping
// last_login. This is the only operation that touches last_login; resolving a
// token on an authenticated request never does.
func (s *UserService) Login(ctx context.Context, email string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	now := nowFunc().UTC()
	if err := repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, common.ErrorInternal
	}
	user.LastLogin = &now

	return user, nil
}
