// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/electsim/auth"
	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/election"
	"github.com/danielhkuo/electsim/middleware"
	"github.com/danielhkuo/electsim/models"
)

type ScenarioHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewScenarioHandler(db *sql.DB, cfg cliparse.Config) *ScenarioHandler {
	return &ScenarioHandler{db: db, cfg: cfg}
}

// SaveScenario handles POST /scenarios
func (h *ScenarioHandler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	var req models.SaveScenarioRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	system, err := election.ParseSystem(req.System)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := checkLimits(h.cfg, len(req.Election.Candidates), len(req.Election.Parties)); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	// Only store scenarios that can be calculated
	if _, err := election.Calculate(system, req.Election.Clone(), req.Params); err != nil {
		calculationError(w, err, "failed to validate scenario", "system", system.String())
		return
	}

	data, err := json.Marshal(models.ScenarioData{Election: req.Election, Params: req.Params})
	if err != nil {
		slog.Error("failed to encode scenario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save scenario")
		return
	}

	scenarioID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate scenario ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate ID")
		return
	}
	slug := auth.GenerateShareSlug(scenarioID, h.cfg.SlugSalt)
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)

	_, err = h.db.Exec(`
		INSERT INTO scenario (id, name, system, share_slug, data, creator_ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, scenarioID, req.Name, system.String(), slug, string(data), ipHash, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert scenario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save scenario")
		return
	}

	slog.Info("scenario saved", "scenario_id", scenarioID, "system", system.String())

	middleware.JSONResponse(w, http.StatusCreated, models.SaveScenarioResponse{
		ScenarioID: scenarioID,
		AdminKey:   auth.GenerateAdminKey(scenarioID, h.cfg.AdminKeySalt),
		ShareSlug:  slug,
	})
}

// GetScenario handles GET /scenarios/:slug
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	sc, err := h.loadScenario(slug)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Scenario not found")
		return
	}
	if err != nil {
		slog.Error("failed to load scenario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sc)
}

// RecordResult handles POST /scenarios/:slug/results
// Body is optional; a system field overrides the saved system.
func (h *ScenarioHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var req models.RecordResultRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	sc, err := h.loadScenario(slug)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Scenario not found")
		return
	}
	if err != nil {
		slog.Error("failed to load scenario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	name := sc.System
	if req.System != "" {
		name = req.System
	}
	system, err := election.ParseSystem(name)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := election.Calculate(system, sc.Election, sc.Params)
	if err != nil {
		calculationError(w, err, "failed to calculate scenario", "scenario_id", sc.ID, "system", system.String())
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		slog.Error("failed to encode result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	snapshotID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate snapshot ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate ID")
		return
	}
	computedAt := time.Now().UTC()

	if err := h.insertSnapshot(snapshotID, sc.ID, system.String(), computedAt, payload); err != nil {
		slog.Error("failed to insert snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	slog.Info("result recorded", "scenario_id", sc.ID, "snapshot_id", snapshotID, "system", system.String())

	middleware.JSONResponse(w, http.StatusCreated, models.ResultSnapshot{
		ID:         snapshotID,
		ScenarioID: sc.ID,
		System:     system.String(),
		ComputedAt: computedAt,
		Result:     res,
	})
}

// insertSnapshot stores a snapshot under the next seq for its scenario.
// Concurrent writers that pick the same seq fail on the unique constraint.
func (h *ScenarioHandler) insertSnapshot(id, scenarioID, system string, computedAt time.Time, payload []byte) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM result_snapshot WHERE scenario_id = $1", scenarioID).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO result_snapshot (id, scenario_id, seq, system, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, scenarioID, seq, system, computedAt, string(payload))
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return tx.Commit()
}

// GetResults handles GET /scenarios/:slug/results and returns the latest snapshot
func (h *ScenarioHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var scenarioID string
	err := h.db.QueryRow("SELECT id FROM scenario WHERE share_slug = $1", slug).Scan(&scenarioID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Scenario not found")
		return
	}
	if err != nil {
		slog.Error("failed to query scenario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var snap models.ResultSnapshot
	var payload string
	err = h.db.QueryRow(`
		SELECT id, scenario_id, system, computed_at, payload
		FROM result_snapshot
		WHERE scenario_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, scenarioID).Scan(&snap.ID, &snap.ScenarioID, &snap.System, (*timestamp)(&snap.ComputedAt), &payload)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No results recorded")
		return
	}
	if err != nil {
		slog.Error("failed to query snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := json.Unmarshal([]byte(payload), &snap.Result); err != nil {
		slog.Error("failed to decode snapshot", "snapshot_id", snap.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Corrupt snapshot")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// DeleteScenario handles DELETE /scenarios/:id
func (h *ScenarioHandler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	scenarioID := r.PathValue("id")
	if scenarioID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "scenario_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(scenarioID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// SQLite only cascades with foreign_keys enabled, so snapshots go first
	snaps, err := tx.Exec("DELETE FROM result_snapshot WHERE scenario_id = $1", scenarioID)
	if err != nil {
		slog.Error("failed to delete snapshots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete scenario")
		return
	}

	res, err := tx.Exec("DELETE FROM scenario WHERE id = $1", scenarioID)
	if err != nil {
		slog.Error("failed to delete scenario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete scenario")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Scenario not found")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete scenario")
		return
	}

	deleted, _ := snaps.RowsAffected()
	slog.Info("scenario deleted", "scenario_id", scenarioID, "snapshots", deleted)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteScenarioResponse{
		ScenarioID:       scenarioID,
		SnapshotsDeleted: deleted,
	})
}

func (h *ScenarioHandler) loadScenario(slug string) (*models.Scenario, error) {
	var sc models.Scenario
	var data string
	err := h.db.QueryRow(`
		SELECT id, name, system, share_slug, data, created_at
		FROM scenario
		WHERE share_slug = $1
	`, slug).Scan(&sc.ID, &sc.Name, &sc.System, &sc.ShareSlug, &data, (*timestamp)(&sc.CreatedAt))
	if err != nil {
		return nil, err
	}

	var stored models.ScenarioData
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, err
	}
	sc.Election = stored.Election
	sc.Params = stored.Params
	return &sc, nil
}

// timestamp scans TIMESTAMP columns from drivers that return either
// time.Time or text.
type timestamp time.Time

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (ts *timestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		*ts = timestamp(v)
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = timestamp(t)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}
