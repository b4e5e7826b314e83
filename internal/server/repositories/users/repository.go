package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

// Repository is the identity registry: durable storage of users and their
// bearer tokens.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID string, when time.Time) error
}
