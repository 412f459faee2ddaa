// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the scenario store.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - scenario: A saved election definition (JSON) with its default system
  - result_snapshot: Results computed from a scenario (JSON payload), numbered by seq

# Relationships

	scenario 1──* result_snapshot

Snapshots are removed together with their scenario.
*/
package db
