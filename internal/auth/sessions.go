package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qcr/internal/models"
)

// TimeLayout is how session and lockout timestamps are stored.
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrNoSession      = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired due to inactivity")
)

// SessionPolicy bounds the lifetime of a login session.
type SessionPolicy struct {
	// TTL is the sliding expiry, renewed on every authenticated request.
	TTL time.Duration
	// IdleTimeout ends a session that has seen no request for this long.
	IdleTimeout time.Duration
}

var DefaultSessionPolicy = SessionPolicy{TTL: 24 * time.Hour, IdleTimeout: 30 * time.Minute}

// CreateSession starts a session for userID and returns its token.
func CreateSession(ctx context.Context, db *sql.DB, userID int, p SessionPolicy) (string, time.Time, error) {
	if _, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC().Format(TimeLayout)); err != nil {
		return "", time.Time{}, fmt.Errorf("purge sessions: %w", err)
	}

	token := uuid.NewString()
	expires := time.Now().UTC().Add(p.TTL)
	_, err := db.ExecContext(ctx, "INSERT INTO sessions (token, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		token, userID, expires.Format(TimeLayout), time.Now().UTC().Format(TimeLayout))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}
	return token, expires, nil
}

// TouchSession resolves token to its user and slides the expiry forward.
// An idle session is deleted and reported as ErrSessionExpired.
func TouchSession(ctx context.Context, db *sql.DB, token string, p SessionPolicy) (models.User, time.Time, error) {
	var u models.User
	var lastActivity string
	now := time.Now().UTC()
	err := db.QueryRowContext(ctx, `SELECT u.id, u.username, u.display_name, u.role, u.active, COALESCE(s.last_activity, s.created_at)
		FROM sessions s JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?`, token, now.Format(TimeLayout)).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role, &u.Active, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return u, time.Time{}, ErrNoSession
	}
	if err != nil {
		return u, time.Time{}, err
	}

	if last, ok := parseTime(lastActivity); ok && p.IdleTimeout > 0 && now.Sub(last) > p.IdleTimeout {
		if err := DeleteSession(ctx, db, token); err != nil {
			return u, time.Time{}, err
		}
		return u, time.Time{}, ErrSessionExpired
	}
	if u.Active == 0 {
		return u, time.Time{}, ErrAccountDisabled
	}

	expires := now.Add(p.TTL)
	_, err = db.ExecContext(ctx, "UPDATE sessions SET expires_at = ?, last_activity = ? WHERE token = ?",
		expires.Format(TimeLayout), now.Format(TimeLayout), token)
	return u, expires, err
}

func DeleteSession(ctx context.Context, db *sql.DB, token string) error {
	_, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}
