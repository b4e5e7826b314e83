package attachments

import (
	"context"

	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

// Repository stores attachment metadata. The file bodies live in object
// storage under Attachment.StorageKey.
type Repository interface {
	Create(ctx context.Context, att *models.Attachment) (*models.Attachment, error)
	GetByID(ctx context.Context, userID, attID string) (*models.Attachment, error)
	ListByMessage(ctx context.Context, userID, msgID string) ([]*models.Attachment, error)
}
