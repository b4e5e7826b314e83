package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/logging"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

type recordingTransport struct {
	delivered []*models.Message
	err       error
}

func (t *recordingTransport) Deliver(ctx context.Context, msg *models.Message) error {
	t.delivered = append(t.delivered, msg)
	return t.err
}

func newMessageService(t *testing.T, rm *fakeRepoManager, tr Transport) (*MessageService, func()) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	var logger logging.Logger = nopLogger{}
	return NewMessageService(db, rm, tr, logger), func() { db.Close() }
}

func TestSend_Success(t *testing.T) {
	repo := &fakeMessagesRepo{}
	tr := &recordingTransport{}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, tr)
	defer closeDB()

	user := &models.User{ID: "u-1", Email: "alice@example.com"}
	msg, err := s.Send(context.Background(), user, "Bob@Example.com", "hi", "hello")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if msg.Sender != "alice@example.com" || msg.Recipient != "bob@example.com" {
		t.Fatalf("unexpected addresses: %+v", msg)
	}
	if len(tr.delivered) != 1 || tr.delivered[0].ID != msg.ID {
		t.Fatalf("message not handed to transport: %+v", tr.delivered)
	}
}

func TestSend_InvalidRecipient(t *testing.T) {
	tr := &recordingTransport{}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: &fakeMessagesRepo{}}, tr)
	defer closeDB()

	user := &models.User{ID: "u-1", Email: "alice@example.com"}
	_, err := s.Send(context.Background(), user, "not-an-email", "hi", "hello")
	if !errors.Is(err, common.ErrorInvalidEmail) {
		t.Fatalf("want ErrorInvalidEmail, got %v", err)
	}
	if len(tr.delivered) != 0 {
		t.Fatal("nothing should reach the transport")
	}
}

func TestSend_TransportFailureDoesNotFailSend(t *testing.T) {
	tr := &recordingTransport{err: errBoom{}}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: &fakeMessagesRepo{}}, tr)
	defer closeDB()

	user := &models.User{ID: "u-1", Email: "alice@example.com"}
	msg, err := s.Send(context.Background(), user, "bob@example.com", "hi", "hello")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("stored copy missing")
	}
}

func TestList_PaginationBounds(t *testing.T) {
	repo := &fakeMessagesRepo{}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, &recordingTransport{})
	defer closeDB()

	tests := []struct {
		name              string
		limit, offset     int
		wantLim, wantOffs int
	}{
		{"defaults", 0, 0, 20, 0},
		{"negative", -5, -3, 20, 0},
		{"capped", 500, 10, 100, 10},
		{"passthrough", 7, 2, 7, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.List(context.Background(), "u-1", tt.limit, tt.offset); err != nil {
				t.Fatalf("List error: %v", err)
			}
			if repo.gotLimit != tt.wantLim || repo.gotOffset != tt.wantOffs {
				t.Fatalf("limit/offset = %d/%d, want %d/%d", repo.gotLimit, repo.gotOffset, tt.wantLim, tt.wantOffs)
			}
		})
	}
}

func TestGet_MarksUnreadMessageRead(t *testing.T) {
	repo := &fakeMessagesRepo{getOut: &models.Message{ID: "m-1", UserID: "u-1", Read: false}}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, &recordingTransport{})
	defer closeDB()

	msg, err := s.Get(context.Background(), "u-1", "m-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !msg.Read || !repo.markReadCalled {
		t.Fatalf("message not marked read: %+v called=%v", msg, repo.markReadCalled)
	}
}

func TestGet_ReadMessageLeftAlone(t *testing.T) {
	repo := &fakeMessagesRepo{getOut: &models.Message{ID: "m-1", UserID: "u-1", Read: true}}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, &recordingTransport{})
	defer closeDB()

	if _, err := s.Get(context.Background(), "u-1", "m-1"); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if repo.markReadCalled {
		t.Fatal("MarkRead should not run for an already-read message")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &fakeMessagesRepo{getErr: common.ErrorNotFound}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, &recordingTransport{})
	defer closeDB()

	_, err := s.Get(context.Background(), "u-1", "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo := &fakeMessagesRepo{}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, &recordingTransport{})
	defer closeDB()

	if err := s.Delete(context.Background(), "u-1", "m-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if repo.deletedID != "m-1" {
		t.Fatalf("deleted %q, want m-1", repo.deletedID)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &fakeMessagesRepo{deleteErr: common.ErrorNotFound}
	s, closeDB := newMessageService(t, &fakeRepoManager{m: repo}, &recordingTransport{})
	defer closeDB()

	if err := s.Delete(context.Background(), "u-1", "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
