// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CalculateRequest: system plus election and parameter fields
  - CompareRequest: systems plus election and parameter fields
  - ApportionRequest: votes, seats, method, threshold
  - STVRequest: candidates, ballots, seats
  - GenerateBallotsRequest: candidates, num_voters, distribution, seed
  - SaveScenarioRequest: name, system, election, params
  - RecordResultRequest: optional system override

# Response Types

  - CompareResponse: one entry per system
  - ApportionResponse: seats, shares, indices, natural threshold
  - GenerateBallotsResponse: ballots and the seed used
  - SaveScenarioResponse: scenario_id, admin_key, share_slug
  - DeleteScenarioResponse: scenario_id, snapshots_deleted
  - HealthResponse: status, version, features
  - ErrorResponse: error, message

# Domain Types

  - Scenario: a saved election definition
  - ScenarioData: the JSON stored in scenario.data
  - ResultSnapshot: a result computed from a scenario
*/
package models
