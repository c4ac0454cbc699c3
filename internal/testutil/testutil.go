// Package testutil holds helpers shared by package tests: an in-memory
// database, users with sessions and authenticated requests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qcr/internal/auth"
	"qcr/internal/database"
	"qcr/internal/models"
)

// SessionCookie mirrors the login cookie name of the server package.
const SessionCookie = "qcr_session"

// TestPassword satisfies the password policy.
const TestPassword = "Inspector2024!"

// SetupTestDB opens a migrated in-memory database with the default role
// permissions seeded.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}
	if err := auth.SeedDefaultPermissions(ctx, db); err != nil {
		t.Fatalf("Failed to seed permissions: %v", err)
	}
	return db
}

// PermCache returns a permission cache loaded from db.
func PermCache(t *testing.T, db *sql.DB) *auth.PermCache {
	t.Helper()
	pc := auth.NewPermCache()
	if err := pc.Refresh(context.Background(), db); err != nil {
		t.Fatalf("Failed to load permissions: %v", err)
	}
	return pc
}

// CreateTestUser creates a user with TestPassword and the given role.
func CreateTestUser(t *testing.T, db *sql.DB, username, role string) models.User {
	t.Helper()
	u, err := auth.CreateUser(context.Background(), db, auth.NewUser{
		Username:    username,
		DisplayName: username + " Display",
		Password:    TestPassword,
		Role:        role,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// Login creates a user with role and returns a live session token for it.
func Login(t *testing.T, db *sql.DB, username, role string) string {
	t.Helper()
	u := CreateTestUser(t, db, username, role)
	token, _, err := auth.CreateSession(context.Background(), db, u.ID, auth.DefaultSessionPolicy)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return token
}

// AuthedRequest creates an HTTP request carrying the session cookie.
func AuthedRequest(method, path string, body []byte, sessionToken string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionToken})
	}
	return req
}

// AuthedJSONRequest creates an authenticated HTTP request with a JSON body.
func AuthedJSONRequest(method, path string, body interface{}, sessionToken string) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := AuthedRequest(method, path, bodyBytes, sessionToken)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertStatus checks that the HTTP status code matches expected.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeAPIResponse decodes an APIResponse from a ResponseRecorder.
func DecodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode API response: %v", err)
	}
	return resp
}

// DecodeEnvelope decodes an API response envelope into v and returns the
// envelope for its meta and message.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, v interface{}) models.APIResponse {
	t.Helper()
	resp := DecodeAPIResponse(t, w)
	dataBytes, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(dataBytes, v); err != nil {
		t.Fatalf("Failed to decode data from envelope: %v", err)
	}
	return resp
}
