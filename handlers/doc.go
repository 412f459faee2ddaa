// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the electsim API.

# Handler Types

  - ElectionHandler: single-system calculation, comparisons and STV
  - ToolsHandler: apportionment, ballot generation, strategic voting
  - ScenarioHandler: the saved scenario store

Only ScenarioHandler needs a database:

	scenarioHandler := handlers.NewScenarioHandler(db, cfg)

# Scenario Lifecycle

	POST   /scenarios                → SaveScenario (returns admin_key, share_slug)
	GET    /scenarios/{slug}         → GetScenario
	POST   /scenarios/{slug}/results → RecordResult (new snapshot)
	GET    /scenarios/{slug}/results → GetResults (latest snapshot)
	DELETE /scenarios/{id}           → DeleteScenario (X-Admin-Key)

A scenario is validated by calculating it once before it is stored.

# Error Handling

Input problems map to 400 with the engine's error message. Store failures
are logged with slog and return 500 with a generic message. Candidate and
party lists longer than MaxCandidates, and ballot generation requests larger
than MaxVoters, are rejected with 400.
*/
package handlers
