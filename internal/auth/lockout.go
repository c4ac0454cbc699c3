package auth

import (
	"context"
	"database/sql"
	"time"
)

const (
	MaxFailedLoginAttempts = 10
	AccountLockoutDuration = 15 * time.Minute
)

// IncrementFailedLoginAttempts increments the failed login counter and locks
// the account once the limit is reached.
func IncrementFailedLoginAttempts(ctx context.Context, db *sql.DB, username string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE
		        WHEN failed_login_attempts + 1 >= ? THEN ?
		        ELSE locked_until
		    END
		WHERE username = ?`,
		MaxFailedLoginAttempts, time.Now().UTC().Add(AccountLockoutDuration).Format(TimeLayout), username)
	return err
}

// ResetFailedLoginAttempts resets the failed login counter after successful login.
func ResetFailedLoginAttempts(ctx context.Context, db *sql.DB, username string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL
		WHERE username = ?`, username)
	return err
}

// IsAccountLocked checks if an account is currently locked. An expired lock
// is cleared.
func IsAccountLocked(ctx context.Context, db *sql.DB, username string) (bool, error) {
	var lockedUntil sql.NullString
	err := db.QueryRowContext(ctx, "SELECT locked_until FROM users WHERE username = ?", username).Scan(&lockedUntil)
	if err != nil {
		return false, err
	}
	if !lockedUntil.Valid {
		return false, nil
	}

	lockTime, ok := parseTime(lockedUntil.String)
	if !ok {
		return false, nil
	}
	if time.Now().UTC().Before(lockTime) {
		return true, nil
	}

	return false, ResetFailedLoginAttempts(ctx, db, username)
}

// parseTime accepts the layouts SQLite hands back for DATETIME columns.
func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{TimeLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
