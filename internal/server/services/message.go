package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/logging"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/repomanager"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Transport delivers an outbound copy of a message beyond this mailbox.
// The server persists the sender's copy regardless of delivery outcome.
type Transport interface {
	Deliver(ctx context.Context, msg *models.Message) error
}

// LogTransport is a Transport that only records the delivery attempt.
type LogTransport struct {
	logger logging.Logger
}

func NewLogTransport(logger logging.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Deliver(ctx context.Context, msg *models.Message) error {
	t.logger.Info(ctx, "delivering message", "id", msg.ID, "recipient", msg.Recipient)
	return nil
}

type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	transport   Transport
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, transport Transport, logger logging.Logger) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: m,
		transport:   transport,
		logger:      logger,
	}
}

// Send stores the sender's copy of an outbound message and hands it to the
// transport. A transport failure is logged but does not fail the send; the
// stored copy is the source of truth.
func (s *MessageService) Send(ctx context.Context, user *models.User, recipient, subject, body string) (*models.Message, error) {

	recipient = common.NormalizeEmail(recipient)
	if err := common.ValidateEmail(recipient); err != nil {
		return nil, common.ErrorInvalidEmail
	}

	msg := &models.Message{
		UserID:    user.ID,
		Sender:    user.Email,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}

	repo := s.repomanager.Messages(s.db)

	msg, err := repo.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	if err := s.transport.Deliver(ctx, msg); err != nil {
		s.logger.Error(ctx, "message delivery failed", "id", msg.ID, "error", err.Error())
	}

	return msg, nil
}

// List returns a page of the user's messages, newest first. A non-positive
// limit falls back to the default page size, and oversized limits are capped.
func (s *MessageService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Message, error) {

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	repo := s.repomanager.Messages(s.db)

	result, err := repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	return result, nil
}

// Get fetches one of the user's messages and marks it read.
func (s *MessageService) Get(ctx context.Context, userID, msgID string) (*models.Message, error) {

	repo := s.repomanager.Messages(s.db)

	msg, err := repo.GetByID(ctx, userID, msgID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if !msg.Read {
		if err := repo.MarkRead(ctx, userID, msgID); err != nil {
			return nil, common.ErrorInternal
		}
		msg.Read = true
	}

	return msg, nil
}

// Delete removes one of the user's messages together with its attachment
// metadata.
func (s *MessageService) Delete(ctx context.Context, userID, msgID string) error {

	repo := s.repomanager.Messages(s.db)

	if err := repo.Delete(ctx, userID, msgID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	return nil
}
