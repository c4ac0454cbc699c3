package server

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"qcr/internal/audit"
	"qcr/internal/auth"
	"qcr/internal/session"
	"qcr/internal/telemetry"
	"qcr/internal/websocket"
)

// ContextKey is the type used for request context keys.
type ContextKey string

const (
	CtxUserID       ContextKey = "userID"
	CtxUsername     ContextKey = "username"
	CtxRole         ContextKey = "role"
	CtxSessionToken ContextKey = "sessionToken"
)

// SessionCookie names the login session cookie.
const SessionCookie = "qcr_session"

// App holds shared dependencies for the application.
type App struct {
	DB        *sql.DB
	Hub       *websocket.Hub
	PermCache *auth.PermCache
	// States keeps each session's list-view filters, sort and page.
	States  session.Store
	Audit   *audit.Recorder
	Metrics *telemetry.Metrics
	Log     *zap.Logger
	Policy  auth.SessionPolicy
}

// NewApp assembles the shared dependencies over an opened and migrated
// database. Role permissions are seeded when the table is empty.
func NewApp(ctx context.Context, db *sql.DB, states session.Store, metrics *telemetry.Metrics, log *zap.Logger, policy auth.SessionPolicy) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pc := auth.NewPermCache()
	if err := auth.InitPermissions(ctx, db, pc); err != nil {
		return nil, fmt.Errorf("init permissions: %w", err)
	}
	hub := websocket.NewHub(log)
	return &App{
		DB:        db,
		Hub:       hub,
		PermCache: pc,
		States:    states,
		Audit:     audit.NewRecorder(db, hub, log.Named("audit")),
		Metrics:   metrics,
		Log:       log,
		Policy:    policy,
	}, nil
}

// Username returns the logged-in user of ctx, or "system".
func Username(ctx context.Context) string {
	if u, ok := ctx.Value(CtxUsername).(string); ok && u != "" {
		return u
	}
	return "system"
}

// SessionToken returns the session token of ctx.
func SessionToken(ctx context.Context) string {
	t, _ := ctx.Value(CtxSessionToken).(string)
	return t
}
