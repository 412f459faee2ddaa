// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/danielhkuo/electsim/ballotgen"
	"github.com/danielhkuo/electsim/election"
	"github.com/danielhkuo/electsim/ranked"
)

// Request types

// CalculateRequest runs one system. Election and parameter fields sit at
// the top level of the JSON object.
type CalculateRequest struct {
	System string `json:"system"`
	election.Election
	election.Params
}

// CompareRequest runs several systems over the same election. An empty
// Systems list compares every system.
type CompareRequest struct {
	Systems []string `json:"systems"`
	election.Election
	election.Params
}

type ApportionRequest struct {
	Votes     map[string]float64 `json:"votes"`
	Seats     int                `json:"seats"`
	Method    string             `json:"method"`
	Threshold float64            `json:"threshold"`
}

type STVRequest struct {
	Candidates []ranked.Candidate `json:"candidates"`
	Ballots    []ranked.Ballot    `json:"ballots"`
	Seats      int                `json:"seats"`
}

type GenerateBallotsRequest struct {
	Candidates   []string `json:"candidates"`
	NumVoters    int      `json:"num_voters"`
	Distribution string   `json:"distribution"`
	Seed         *uint64  `json:"seed,omitempty"`
}

type SaveScenarioRequest struct {
	Name     string            `json:"name"`
	System   string            `json:"system"`
	Election election.Election `json:"election"`
	Params   election.Params   `json:"params"`
}

// RecordResultRequest optionally overrides the scenario's saved system.
type RecordResultRequest struct {
	System string `json:"system,omitempty"`
}

// Response types

type CompareResponse struct {
	Comparisons []election.Comparison `json:"comparisons"`
}

type ApportionResponse struct {
	Method           string             `json:"method"`
	Seats            map[string]int     `json:"seats"`
	TotalSeats       int                `json:"total_seats"`
	TotalVotes       float64            `json:"total_votes"`
	VoteShares       map[string]float64 `json:"vote_shares"`
	SeatShares       map[string]float64 `json:"seat_shares"`
	Excluded         []string           `json:"excluded,omitempty"`
	Indices          election.Indices   `json:"indices"`
	NaturalThreshold float64            `json:"natural_threshold"`
}

type GenerateBallotsResponse struct {
	*ballotgen.Result
	Seed uint64 `json:"seed,omitempty"`
}

type SaveScenarioResponse struct {
	ScenarioID string `json:"scenario_id"`
	AdminKey   string `json:"admin_key"`
	ShareSlug  string `json:"share_slug"`
}

type DeleteScenarioResponse struct {
	ScenarioID       string `json:"scenario_id"`
	SnapshotsDeleted int64  `json:"snapshots_deleted"`
}

type HealthResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}

// Domain types

// ScenarioData is the stored body of a scenario.
type ScenarioData struct {
	Election election.Election `json:"election"`
	Params   election.Params   `json:"params"`
}

type Scenario struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	System    string            `json:"system"`
	ShareSlug string            `json:"share_slug"`
	Election  election.Election `json:"election"`
	Params    election.Params   `json:"params"`
	CreatedAt time.Time         `json:"created_at"`
}

type ResultSnapshot struct {
	ID         string           `json:"id"`
	ScenarioID string           `json:"scenario_id"`
	System     string           `json:"system"`
	ComputedAt time.Time        `json:"computed_at"`
	Result     *election.Result `json:"result"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
