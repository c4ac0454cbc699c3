package server

import (
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"qcr/internal/auth"
	"qcr/internal/response"
)

// GzipResponseWriter wraps http.ResponseWriter to support gzip compression.
type GzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w GzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

// GzipMiddleware compresses responses when client supports gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Range") != "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")

		gz := gzip.NewWriter(w)
		defer gz.Close()

		gzw := GzipResponseWriter{Writer: gz, ResponseWriter: w}
		next.ServeHTTP(gzw, r)
	})
}

// AccessLog logs method, path, status, latency and request id of every
// request. Server errors log at error level, client errors at warn.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			switch {
			case status >= 500:
				log.Error("request", fields...)
			case status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}

// SecurityHeaders adds security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie writes the login cookie.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// ClearSessionCookie removes the login cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// RequireAuth rejects requests without a live session and stores the user
// in the request context. Each request slides the session expiry forward.
func RequireAuth(db *sql.DB, policy auth.SessionPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				response.ErrCode(w, "Unauthorized", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}

			user, expires, err := auth.TouchSession(r.Context(), db, cookie.Value, policy)
			switch {
			case errors.Is(err, auth.ErrSessionExpired):
				ClearSessionCookie(w)
				response.ErrCode(w, "Session expired due to inactivity", "SESSION_TIMEOUT", http.StatusUnauthorized)
				return
			case errors.Is(err, auth.ErrNoSession):
				response.ErrCode(w, "Unauthorized", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			case errors.Is(err, auth.ErrAccountDisabled):
				response.ErrCode(w, "Account deactivated", "FORBIDDEN", http.StatusForbidden)
				return
			case err != nil:
				response.Err(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			SetSessionCookie(w, r, cookie.Value, expires)

			ctx := context.WithValue(r.Context(), CtxUserID, user.ID)
			ctx = context.WithValue(ctx, CtxUsername, user.Username)
			ctx = context.WithValue(ctx, CtxRole, user.Role)
			ctx = context.WithValue(ctx, CtxSessionToken, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRBAC enforces permission-based access control on /api/v1/ routes.
func RequireRBAC(pc *auth.PermCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !strings.HasPrefix(path, "/api/v1/") {
				next.ServeHTTP(w, r)
				return
			}

			role, _ := r.Context().Value(CtxRole).(string)
			apiPath := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/"), "/")
			module, action := auth.MapAPIPathToPermission(apiPath, r.Method)
			if module == "" || action == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !pc.HasPermission(role, module, action) {
				response.ErrCode(w, "Permission denied", "FORBIDDEN", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
