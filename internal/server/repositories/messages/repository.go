package messages

import (
	"context"

	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

// Repository stores mailbox messages. All reads are scoped to the owning
// user so one user can never see or delete another user's mail.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Message, error)
	GetByID(ctx context.Context, userID, msgID string) (*models.Message, error)
	MarkRead(ctx context.Context, userID, msgID string) error
	Delete(ctx context.Context, userID, msgID string) error
}
