// Package server wires the application together: configuration, storage,
// migrations, services, the HTTP endpoint, and the background session
// sweeper, with graceful shutdown on SIGINT/SIGTERM.
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

	"github.com/dberzins/inkwell/internal/logging"
	"github.com/dberzins/inkwell/internal/server/config"
	"github.com/dberzins/inkwell/internal/server/httpapi"
	"github.com/dberzins/inkwell/internal/server/mail"
	"github.com/dberzins/inkwell/internal/server/models"
	"github.com/dberzins/inkwell/internal/server/repositories/repomanager"
	"github.com/dberzins/inkwell/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	sessionService *services.SessionService
	httpServer     *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm)
	sessionService := services.NewSessionService(db, rm, cfg)
	postService := services.NewPostService(db, rm)
	imageService := services.NewImageService(cfg)
	mailer := mail.NewSESMailer(cfg)

	isAdmin := func(u *models.User) bool { return u.ID == cfg.AdminUserID }

	httpServer := httpapi.NewServer(
		cfg.EndpointAddr,
		log,
		userService,
		sessionService,
		postService,
		imageService,
		mailer,
		isAdmin,
		cfg.CORSAllowedOrigins,
		cfg.SessionValidityDuration,
	)

	return &App{
		config:         cfg,
		logger:         log,
		db:             db,
		sessionService: sessionService,
		httpServer:     httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runSessionSweeper purges expired session rows on a fixed interval until
// ctx is cancelled.
func (app *App) runSessionSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.sessionService.Sweep(ctx)
			if err != nil {
				app.logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSessionSweeper(ctx, app.config.SessionSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
