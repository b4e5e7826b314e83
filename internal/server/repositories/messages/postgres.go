// Package messages provides the PostgreSQL-backed message store.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/dbx"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

// PostgresRepository implements message storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a message into the owner's mailbox.
func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (user_id, sender, recipient, subject, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.UserID, msg.Sender, msg.Recipient, msg.Subject, msg.Body).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// ListByUser returns the user's messages, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Message, error) {
	query :=
		`SELECT id, user_id, sender, recipient, subject, body, read, created_at FROM messages
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Sender, &item.Recipient, &item.Subject, &item.Body,
			&item.Read, &item.CreatedAt,
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

// GetByID fetches a single message owned by userID.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, msgID string) (*models.Message, error) {
	query :=
		`SELECT id, user_id, sender, recipient, subject, body, read, created_at FROM messages
		 WHERE id = $1 AND user_id = $2
		 `

	var item models.Message
	err := r.db.QueryRowContext(ctx, query, msgID, userID).Scan(
		&item.ID, &item.UserID, &item.Sender, &item.Recipient, &item.Subject, &item.Body,
		&item.Read, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &item, nil
}

// MarkRead flags a message as read. Reading is idempotent.
func (r *PostgresRepository) MarkRead(ctx context.Context, userID, msgID string) error {
	query :=
		`UPDATE messages SET read = TRUE
		 WHERE id = $1 AND user_id = $2
		 `

	return r.execOwned(ctx, query, msgID, userID)
}

// Delete removes a message owned by userID. Attachments go with it via
// the ON DELETE CASCADE on the attachments table.
func (r *PostgresRepository) Delete(ctx context.Context, userID, msgID string) error {
	query :=
		`DELETE FROM messages
		 WHERE id = $1 AND user_id = $2
		 `

	return r.execOwned(ctx, query, msgID, userID)
}

func (r *PostgresRepository) execOwned(ctx context.Context, query, msgID, userID string) error {
	res, err := r.db.ExecContext(ctx, query, msgID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
