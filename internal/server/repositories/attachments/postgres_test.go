package attachments

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+attachments\s*\(message_id,\s*user_id,\s*file_name,\s*size,\s*storage_key\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`

	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", created)
	mock.ExpectQuery(q).
		WithArgs("m-1", "u-1", "report.pdf", int64(2048), "u-1/m-1/report.pdf").
		WillReturnRows(rows)

	att := &models.Attachment{MessageID: "m-1", UserID: "u-1", FileName: "report.pdf", Size: 2048, StorageKey: "u-1/m-1/report.pdf"}
	got, err := repo.Create(context.Background(), att)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "a-1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected attachment: %+v", got)
	}
}

const getQ = `(?s)^SELECT\s+id,\s*message_id,\s*user_id,\s*file_name,\s*size,\s*storage_key,\s*created_at\s+FROM\s+attachments\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "message_id", "user_id", "file_name", "size", "storage_key", "created_at"}).
		AddRow("a-1", "m-1", "u-1", "report.pdf", int64(2048), "u-1/m-1/report.pdf", created)
	mock.ExpectQuery(getQ).
		WithArgs("a-1", "u-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1", "a-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.StorageKey != "u-1/m-1/report.pdf" || got.Size != 2048 {
		t.Fatalf("unexpected attachment: %+v", got)
	}
}

func TestGetByID_OtherUsersAttachment(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQ).
		WithArgs("a-1", "u-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u-2", "a-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByMessage(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*message_id,\s*user_id,\s*file_name,\s*size,\s*storage_key,\s*created_at\s+FROM\s+attachments\s+WHERE\s+message_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+ORDER\s+BY\s+created_at\s*$`

	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "message_id", "user_id", "file_name", "size", "storage_key", "created_at"}).
		AddRow("a-1", "m-1", "u-1", "one.txt", int64(10), "u-1/m-1/one.txt", created).
		AddRow("a-2", "m-1", "u-1", "two.txt", int64(20), "u-1/m-1/two.txt", created.Add(time.Minute))
	mock.ExpectQuery(q).
		WithArgs("m-1", "u-1").
		WillReturnRows(rows)

	got, err := repo.ListByMessage(context.Background(), "u-1", "m-1")
	if err != nil {
		t.Fatalf("ListByMessage error: %v", err)
	}
	if len(got) != 2 || got[0].FileName != "one.txt" || got[1].FileName != "two.txt" {
		t.Fatalf("unexpected attachments: %+v", got)
	}
}
