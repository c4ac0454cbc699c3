// Package session keeps per-user key/value state between requests. List
// views persist their filters, sort and page here.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"qcr/internal/database"
)

// State is a snapshot of one user's session values.
type State map[string]string

// Get returns the value stored under key, or "" when absent.
func (s State) Get(key string) string {
	return s[key]
}

// Lookup returns the value stored under key and whether it was present.
func (s State) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Store persists State per session token.
type Store interface {
	Load(ctx context.Context, token string) (State, error)
	Save(ctx context.Context, token string, st State) error
	Delete(ctx context.Context, token string) error
}

// SQLStore keeps session values in the session_values table. Rows are
// removed with their session through the foreign key.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Load(ctx context.Context, token string) (State, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT key, value FROM session_values WHERE token = ?", token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	st := State{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan session value: %w", err)
		}
		st[k] = v
	}
	return st, rows.Err()
}

func (s *SQLStore) Save(ctx context.Context, token string, st State) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO session_values (token, key, value) VALUES (?, ?, ?)
			ON CONFLICT(token, key) DO UPDATE SET value = excluded.value`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for k, v := range st {
			if _, err := stmt.ExecContext(ctx, token, k, v); err != nil {
				return fmt.Errorf("save session value %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) Delete(ctx context.Context, token string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM session_values WHERE token = ?", token)
	return err
}
