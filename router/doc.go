// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the electsim API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health - status, version and supported features

Calculation (stateless):

	POST /elections/calculate - Run one system
	POST /elections/compare   - Run several systems side by side
	POST /stv/calculate       - STV with an explicit seat count

Tools (stateless):

	POST /apportion                 - Seats, shares and indices from raw votes
	POST /ballots/generate          - Ideological ballot generation
	POST /strategic-voting/simulate - FPTP strategic defection

Scenarios (deletion requires X-Admin-Key):

	POST   /scenarios                - Save a scenario
	GET    /scenarios/{slug}         - Load by share slug
	POST   /scenarios/{slug}/results - Calculate and record a snapshot
	GET    /scenarios/{slug}/results - Latest snapshot
	DELETE /scenarios/{id}           - Delete with its snapshots
*/
package router
