// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/electsim/election"
	"github.com/danielhkuo/electsim/middleware"
	"github.com/danielhkuo/electsim/models"
	"github.com/danielhkuo/electsim/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var health models.HealthResponse
	testutil.AssertJSON(t, w, &health)

	if health.Status != "healthy" || health.Version != Version {
		t.Errorf("Unexpected health response %+v", health)
	}
	if len(health.Features) != len(election.Systems())+4 {
		t.Errorf("Expected every system and tool listed, got %v", health.Features)
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "electsim API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/nowhere", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"POST", "/elections/calculate"},
		{"POST", "/elections/compare"},
		{"POST", "/stv/calculate"},

		{"POST", "/apportion"},
		{"POST", "/ballots/generate"},
		{"POST", "/strategic-voting/simulate"},

		{"POST", "/scenarios"},
		{"GET", "/scenarios/test-slug"},
		{"POST", "/scenarios/test-slug/results"},
		{"GET", "/scenarios/test-slug/results"},
		{"DELETE", "/scenarios/test-id"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/apportion"},
		{"PUT", "/scenarios/test-slug"},
		{"DELETE", "/scenarios/test-slug/results"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/apportion", models.ApportionRequest{
		Votes: map[string]float64{"A": 10},
		Seats: 1,
	}, map[string]string{middleware.RequestIDHeader: "trace-123"})
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if got := w.Header().Get(middleware.RequestIDHeader); got != "trace-123" {
		t.Errorf("Expected request id echoed, got %q", got)
	}
}

func TestScenarioLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	save := models.SaveScenarioRequest{
		Name:   "Ranked race",
		System: "irv",
		Election: election.Election{
			Candidates: []election.Candidate{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}, {ID: "c", Name: "Cara"}},
			Ballots: []election.Ballot{
				{Preferences: []string{"a", "b", "c"}, Count: 45},
				{Preferences: []string{"b", "c", "a"}, Count: 30},
				{Preferences: []string{"c", "b", "a"}, Count: 25},
			},
		},
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/scenarios", save, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.SaveScenarioResponse
	testutil.AssertJSON(t, w, &created)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/scenarios/"+created.ShareSlug+"/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/scenarios/"+created.ShareSlug+"/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var snap struct {
		System string          `json:"system"`
		Result json.RawMessage `json:"result"`
	}
	testutil.AssertJSON(t, w, &snap)

	var res election.Result
	if err := json.Unmarshal(snap.Result, &res); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	// b collects c's transfers and wins 55-45
	if snap.System != "irv" || len(res.Winners) != 1 || res.Winners[0] != "b" {
		t.Errorf("Unexpected IRV snapshot %s %v", snap.System, res.Winners)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("DELETE", "/scenarios/"+created.ScenarioID, nil,
		map[string]string{"X-Admin-Key": created.AdminKey}))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/scenarios/"+created.ShareSlug, nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
