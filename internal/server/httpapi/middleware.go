package httpapi

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/server/models"
)

type contextKey string

const callerContextKey contextKey = "caller"

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

// withCaller resolves the session cookie to the current caller and stores
// it on the request context. Every resolution failure except a storage
// outage leaves the caller anonymous; the request proceeds either way.
func (s *Server) withCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)

		caller, err := s.sessions.Caller(r.Context(), token)
		if err != nil {
			s.logger.Error(r.Context(), "caller resolution failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if caller != nil {
			ctx := context.WithValue(r.Context(), callerContextKey, caller)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// callerFrom returns the resolved caller, or nil for anonymous requests.
func callerFrom(r *http.Request) *models.User {
	caller, _ := r.Context().Value(callerContextKey).(*models.User)
	return caller
}

// requireCaller guards a route subtree with a caller predicate. The
// predicate is injected so access rules can change without touching the
// guarded handlers; an anonymous caller never satisfies it.
func (s *Server) requireCaller(allowed func(*models.User) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := callerFrom(r)
			if caller == nil || !allowed(caller) {
				respondError(w, http.StatusForbidden, common.ErrorForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionValidity.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
