// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(args)

# CLI Flags

	-p               Server port
	-t               Database type (sqlite or postgres)
	-d               Database URL or SQLite path
	-env             .env file to load before reading the environment
	-admin-salt      Admin key salt
	-slug-salt       Scenario slug salt
	-max-voters      Largest ballot generation request
	-max-candidates  Largest candidate or party list
	-log-level       debug, info, warn or error
	-log-format      text or json

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p (default 3318)
	DATABASE_TYPE  → -t (default sqlite)
	DATABASE_URL   → -d (default electoral_data.db for sqlite)
	ADMIN_KEY_SALT → -admin-salt
	SLUG_SALT      → -slug-salt
	MAX_VOTERS     → -max-voters (default 1,000,000)
	MAX_CANDIDATES → -max-candidates (default 50)
	LOG_LEVEL      → -log-level (default info)
	LOG_FORMAT     → -log-format (default text)

CLI flags take precedence over environment variables, and variables already
set take precedence over the .env file.

# Validation

ParseFlags returns an error if:

  - ADMIN_KEY_SALT or SLUG_SALT is missing
  - DATABASE_TYPE is postgres and no URL is given
  - DATABASE_TYPE is neither sqlite nor postgres
  - a numeric setting is not a positive integer

# Example

	cfg, err := cliparse.ParseFlags(os.Args[2:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open(cfg.Driver(), cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg)
*/
package cliparse
