// Package httpapi exposes the mailbox service over HTTP with JSON envelopes.
// Every route passes through the admission gate: bearer authentication where
// required, then the route's rate-limit policies.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/mailbox/internal/logging"
	"github.com/dmitrijs2005/mailbox/internal/server/config"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
	"github.com/dmitrijs2005/mailbox/internal/server/ratelimit"
)

const shutdownTimeout = 5 * time.Second

// UserProvider is the account slice of the service layer.
type UserProvider interface {
	Register(ctx context.Context, email string) (*models.User, error)
	Login(ctx context.Context, email string) (*models.User, error)
}

// MessageProvider is the mailbox slice of the service layer.
type MessageProvider interface {
	Send(ctx context.Context, user *models.User, recipient, subject, body string) (*models.Message, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Message, error)
	Get(ctx context.Context, userID, msgID string) (*models.Message, error)
	Delete(ctx context.Context, userID, msgID string) error
}

// AttachmentProvider is the attachment slice of the service layer.
type AttachmentProvider interface {
	Add(ctx context.Context, userID, msgID, fileName string, size int64) (*models.Attachment, string, error)
	ListForMessage(ctx context.Context, userID, msgID string) ([]*models.Attachment, error)
	DownloadURL(ctx context.Context, userID, attID string) (string, error)
}

// TokenAuthenticator resolves a request's bearer credential.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*models.User, error)
}

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	auth     TokenAuthenticator
	limiter  *ratelimit.Limiter
	policies *ratelimit.Registry

	users       UserProvider
	messages    MessageProvider
	attachments AttachmentProvider

	httpServer *http.Server
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	auth TokenAuthenticator,
	limiter *ratelimit.Limiter,
	policies *ratelimit.Registry,
	users UserProvider,
	messages MessageProvider,
	attachments AttachmentProvider,
) *Server {
	return &Server{
		cfg:         cfg,
		logger:      logger.With("module", "httpapi"),
		auth:        auth,
		limiter:     limiter,
		policies:    policies,
		users:       users,
		messages:    messages,
		attachments: attachments,
	}
}

// Router builds the route table. Factored out of Run so tests can drive the
// full middleware chain through httptest without binding a socket.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/ping", s.ping).Methods(http.MethodGet)

	api.HandleFunc("/register",
		s.admit(s.register, false, ratelimit.PolicyLoginAttempts, ratelimit.PolicyAPICalls)).Methods(http.MethodPost)
	api.HandleFunc("/login",
		s.admit(s.login, false, ratelimit.PolicyLoginAttempts, ratelimit.PolicyAPICalls)).Methods(http.MethodPost)

	api.HandleFunc("/messages",
		s.admit(s.listMessages, true, ratelimit.PolicyAPICalls)).Methods(http.MethodGet)
	api.HandleFunc("/messages",
		s.admit(s.sendMessage, true, ratelimit.PolicyAPICalls, ratelimit.PolicyEmailSending)).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}",
		s.admit(s.getMessage, true, ratelimit.PolicyAPICalls)).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}",
		s.admit(s.deleteMessage, true, ratelimit.PolicyAPICalls)).Methods(http.MethodDelete)

	api.HandleFunc("/messages/{id}/attachments",
		s.admit(s.addAttachment, true, ratelimit.PolicyAPICalls)).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/attachments",
		s.admit(s.listAttachments, true, ratelimit.PolicyAPICalls)).Methods(http.MethodGet)
	api.HandleFunc("/attachments/{id}/download",
		s.admit(s.downloadAttachment, true, ratelimit.PolicyAPICalls, ratelimit.PolicyAttachmentDownload)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.notFound)

	return r
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	handler := handlers.CombinedLoggingHandler(os.Stdout,
		handlers.RecoveryHandler()(s.Router()))

	s.httpServer = &http.Server{
		Addr:    s.cfg.EndpointAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.cfg.EndpointAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
