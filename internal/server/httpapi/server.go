// Package httpapi exposes the blog over a JSON HTTP API: public post
// reads, registration/login, admin-only post mutations, image upload
// URLs, and the contact form. Authorization happens here, at the edge;
// the services below only perform the acts.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dberzins/inkwell/internal/logging"
	"github.com/dberzins/inkwell/internal/server/mail"
	"github.com/dberzins/inkwell/internal/server/models"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "inkwell_session"

// UserProvider covers the account operations the API needs.
type UserProvider interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// SessionProvider manages login sessions and their flash messages.
type SessionProvider interface {
	Start(ctx context.Context, userID int64) (string, error)
	End(ctx context.Context, token string) error
	Caller(ctx context.Context, token string) (*models.User, error)
	Flash(ctx context.Context, token string, message string) error
	DrainFlashes(ctx context.Context, token string) ([]string, error)
}

// PostProvider covers post reads and admin mutations.
type PostProvider interface {
	List(ctx context.Context) ([]*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, title, subtitle, body, imageURL string, author *models.User) (*models.Post, error)
	Update(ctx context.Context, id int64, title, subtitle, body, imageURL string) error
	Delete(ctx context.Context, id int64) error
	Author(ctx context.Context, post *models.Post) (*models.User, error)
}

// ImageProvider hands out presigned object-storage URLs.
type ImageProvider interface {
	GetPresignedPutURL(ctx context.Context) (string, string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

// Server wires the handlers to the services. isAdmin is the injected
// access predicate applied by the mutating post routes.
type Server struct {
	addr     string
	logger   logging.Logger
	users    UserProvider
	sessions SessionProvider
	posts    PostProvider
	images   ImageProvider
	mailer   mail.Mailer

	isAdmin         func(*models.User) bool
	corsOrigins     []string
	sessionValidity time.Duration
}

func NewServer(
	addr string,
	logger logging.Logger,
	users UserProvider,
	sessions SessionProvider,
	posts PostProvider,
	images ImageProvider,
	mailer mail.Mailer,
	isAdmin func(*models.User) bool,
	corsOrigins []string,
	sessionValidity time.Duration,
) *Server {
	return &Server{
		addr:            addr,
		logger:          logger.With("component", "httpapi"),
		users:           users,
		sessions:        sessions,
		posts:           posts,
		images:          images,
		mailer:          mailer,
		isAdmin:         isAdmin,
		corsOrigins:     corsOrigins,
		sessionValidity: sessionValidity,
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.withCaller)

		r.Get("/posts", s.listPosts)
		r.Get("/posts/{id}", s.getPost)
		r.Get("/pages/{slug}", s.getPage)

		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
		r.Get("/session", s.session)

		r.Post("/contact", s.contact)

		r.Group(func(r chi.Router) {
			r.Use(s.requireCaller(s.isAdmin))
			r.Post("/posts", s.createPost)
			r.Put("/posts/{id}", s.updatePost)
			r.Delete("/posts/{id}", s.deletePost)
			r.Post("/images/upload-url", s.imageUploadURL)
			r.Get("/images/download-url", s.imageDownloadURL)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "shutdown error", "error", err)
		return err
	}

	return <-errCh
}
