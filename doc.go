// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the electsim command: an electoral system calculator
with an HTTP API, a file-driven calculator and a ballot generator.

# Commands

	electsim serve [-p 3318] [-t sqlite|postgres] [-d URL] [-env .env]
	electsim calc race.yaml [--system irv] [--compare]
	electsim generate -c a,b,c -n 1000 -d polarized [--seed 7]

# Configuration

serve reads flags first, then an optional .env file, then the environment.

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - SLUG_SALT (-slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): connection string; SQLite defaults to electoral_data.db
  - MAX_VOTERS, MAX_CANDIDATES: request limits
  - LOG_LEVEL, LOG_FORMAT: slog level and text or json output

# Architecture

Calculation packages have no I/O:

  - quota: Droop, Hare and natural thresholds
  - apportion: D'Hondt, Sainte-Laguë and Hare largest remainder
  - metrics: Loosemore-Hanby and Gallagher indices
  - tiebreak: cryptographic random lot
  - ranked: IRV, STV, Borda and Condorcet over ranked ballots
  - election: per-system orchestration and side-by-side comparison
  - ballotgen: ideological ballot generation
  - strategic: FPTP strategic voting simulation

The server is layered on top:

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request logging, JSON helpers
  - models: Request/response types
  - auth: Admin keys, share slugs and IP hashing
  - db: Schema creation
  - cliparse: Configuration parsing
*/
package main
