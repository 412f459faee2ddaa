// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the scenario store tables.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid in both PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Saved election scenarios
CREATE TABLE IF NOT EXISTS scenario (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    system TEXT NOT NULL,
    share_slug TEXT NOT NULL UNIQUE,
    data TEXT NOT NULL,
    creator_ip_hash TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scenario_system ON scenario(system);

-- Computed results; seq counts up per scenario
CREATE TABLE IF NOT EXISTS result_snapshot (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL REFERENCES scenario(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    system TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    payload TEXT NOT NULL,
    UNIQUE (scenario_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_result_snapshot_scenario_id ON result_snapshot(scenario_id);
`
