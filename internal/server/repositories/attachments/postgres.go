// Package attachments provides the PostgreSQL-backed attachment metadata store.
package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/dbx"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

// PostgresRepository implements attachment metadata storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create records attachment metadata for a message.
func (r *PostgresRepository) Create(ctx context.Context, att *models.Attachment) (*models.Attachment, error) {
	query :=
		`INSERT INTO attachments (message_id, user_id, file_name, size, storage_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		att.MessageID, att.UserID, att.FileName, att.Size, att.StorageKey).Scan(&att.ID, &att.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return att, nil
}

// GetByID fetches attachment metadata owned by userID.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, attID string) (*models.Attachment, error) {
	query :=
		`SELECT id, message_id, user_id, file_name, size, storage_key, created_at FROM attachments
		 WHERE id = $1 AND user_id = $2
		 `

	var item models.Attachment
	err := r.db.QueryRowContext(ctx, query, attID, userID).Scan(
		&item.ID, &item.MessageID, &item.UserID, &item.FileName, &item.Size, &item.StorageKey, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &item, nil
}

// ListByMessage returns the attachments of one of the user's messages.
func (r *PostgresRepository) ListByMessage(ctx context.Context, userID, msgID string) ([]*models.Attachment, error) {
	query :=
		`SELECT id, message_id, user_id, file_name, size, storage_key, created_at FROM attachments
		 WHERE message_id = $1 AND user_id = $2
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, msgID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		var item models.Attachment
		if err := rows.Scan(
			&item.ID, &item.MessageID, &item.UserID, &item.FileName, &item.Size, &item.StorageKey, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
