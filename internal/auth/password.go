package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"qcr/internal/database"
	"qcr/internal/models"
	"qcr/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountDisabled    = errors.New("account deactivated")
	ErrUserExists         = errors.New("username already taken")
)

var (
	hasUpper   = regexp.MustCompile(`[A-Z]`).MatchString
	hasLower   = regexp.MustCompile(`[a-z]`).MatchString
	hasNumber  = regexp.MustCompile(`[0-9]`).MatchString
	hasSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-+=]`).MatchString
)

// ValidatePasswordStrength checks password complexity.
func ValidatePasswordStrength(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}

	checks := 0
	for _, has := range []func(string) bool{hasUpper, hasLower, hasNumber, hasSpecial} {
		if has(password) {
			checks++
		}
	}
	if checks < 3 {
		return errors.New("password must contain at least 3 of: uppercase, lowercase, numbers, special characters")
	}
	return nil
}

// NewUser is the input of CreateUser.
type NewUser struct {
	Username    string
	DisplayName string
	Password    string
	Role        string
}

func (u NewUser) validate() error {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "username", u.Username)
	validation.ValidateMaxLength(ve, "username", u.Username, 150)
	validation.ValidateEnum(ve, "role", u.Role, validation.ValidRoles)
	if err := ValidatePasswordStrength(u.Password); err != nil {
		ve.Add("password", err.Error())
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// CreateUser validates u, hashes its password and stores it.
func CreateUser(ctx context.Context, db *sql.DB, u NewUser) (models.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Role == "" {
		u.Role = "user"
	}
	if err := u.validate(); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	res, err := db.ExecContext(ctx, "INSERT INTO users (username, password_hash, display_name, role) VALUES (?, ?, ?, ?)",
		u.Username, string(hash), u.DisplayName, u.Role)
	if database.IsUniqueViolation(err) {
		return models.User{}, ErrUserExists
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return models.User{ID: int(id), Username: u.Username, DisplayName: u.DisplayName, Role: u.Role, Active: 1}, nil
}

// Authenticate checks a username and password. Failed attempts count
// towards the account lockout.
func Authenticate(ctx context.Context, db *sql.DB, username, password string) (models.User, error) {
	var u models.User
	var hash string
	err := db.QueryRowContext(ctx, "SELECT id, username, password_hash, display_name, role, active FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &hash, &u.DisplayName, &u.Role, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrInvalidCredentials
	}
	if err != nil {
		return u, err
	}

	locked, err := IsAccountLocked(ctx, db, username)
	if err != nil {
		return u, err
	}
	if locked {
		return u, ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		if err := IncrementFailedLoginAttempts(ctx, db, username); err != nil {
			return u, err
		}
		return u, ErrInvalidCredentials
	}
	if u.Active == 0 {
		return u, ErrAccountDisabled
	}

	if err := ResetFailedLoginAttempts(ctx, db, username); err != nil {
		return u, err
	}
	_, err = db.ExecContext(ctx, "UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?", u.ID)
	return u, err
}

func ListUsers(ctx context.Context, db *sql.DB) ([]models.User, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, username, display_name, role, active, COALESCE(created_at, ''), last_login FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var lastLogin sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role, &u.Active, &u.CreatedAt, &lastLogin); err != nil {
			return nil, err
		}
		u.LastLogin = database.SP(lastLogin)
		users = append(users, u)
	}
	return users, rows.Err()
}

// ChangePassword replaces the password of userID after checking the current
// one. Other sessions of the user are ended.
func ChangePassword(ctx context.Context, db *sql.DB, userID int, current, next, keepToken string) error {
	var hash string
	err := db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE id = ?", userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if err := ValidatePasswordStrength(next); err != nil {
		ve := &validation.ValidationErrors{}
		ve.Add("new_password", err.Error())
		return ve
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", string(newHash), userID); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ? AND token != ?", userID, keepToken)
		return err
	})
}

// SetActive enables or disables a user. Disabling ends the user's sessions.
func SetActive(ctx context.Context, db *sql.DB, userID int, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	res, err := db.ExecContext(ctx, "UPDATE users SET active = ? WHERE id = ?", flag, userID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if !active {
		_, err = db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
	}
	return err
}
