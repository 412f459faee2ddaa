// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/electsim/auth"
	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/db"
	"github.com/danielhkuo/electsim/models"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a config suitable for handler tests
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		AdminKeySalt:  "test-admin-salt",
		SlugSalt:      "test-slug-salt",
		MaxVoters:     10_000,
		MaxCandidates: 10,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// CreateTestScenario stores a scenario and returns its id, admin key and share slug
func CreateTestScenario(t *testing.T, conn *sql.DB, cfg cliparse.Config, name, system string, data models.ScenarioData) (string, string, string) {
	t.Helper()

	id, err := auth.GenerateID(16)
	if err != nil {
		t.Fatalf("Failed to generate scenario ID: %v", err)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to encode scenario: %v", err)
	}
	slug := auth.GenerateShareSlug(id, cfg.SlugSalt)

	_, err = conn.Exec(`
		INSERT INTO scenario (id, name, system, share_slug, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, name, system, slug, string(payload), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test scenario: %v", err)
	}

	return id, auth.GenerateAdminKey(id, cfg.AdminKeySalt), slug
}

// CountSnapshots returns how many result snapshots a scenario has
func CountSnapshots(t *testing.T, conn *sql.DB, scenarioID string) int {
	t.Helper()

	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM result_snapshot WHERE scenario_id = $1`, scenarioID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count snapshots: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
