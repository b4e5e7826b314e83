// Package server initializes and runs the mailbox application server.
// It wires configuration, storage, the counter store, the admission gate,
// and the HTTP endpoint, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/mailbox/internal/logging"
	"github.com/dmitrijs2005/mailbox/internal/server/auth"
	"github.com/dmitrijs2005/mailbox/internal/server/config"
	"github.com/dmitrijs2005/mailbox/internal/server/httpapi"
	"github.com/dmitrijs2005/mailbox/internal/server/ratelimit"
	"github.com/dmitrijs2005/mailbox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mailbox/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repomanager init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	limiter := ratelimit.NewLimiter(
		ratelimit.NewRedisStore(rdb),
		logger,
		ratelimit.WithFailOpen(cfg.RateLimitFailOpen),
	)

	userService := services.NewUserService(db, rm)
	messageService := services.NewMessageService(db, rm, services.NewLogTransport(logger), logger)
	attachmentService := services.NewAttachmentService(db, rm, cfg)

	httpServer := httpapi.NewServer(
		cfg,
		logger,
		auth.NewAuthenticator(rm.Users(db)),
		limiter,
		ratelimit.NewRegistry(cfg),
		userService,
		messageService,
		attachmentService,
	)

	return &App{config: cfg, logger: logger, db: db, server: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
