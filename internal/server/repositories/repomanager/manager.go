package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mailbox/internal/dbx"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Messages(db dbx.DBTX) messages.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
