// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"

	"github.com/danielhkuo/electsim/apportion"
	"github.com/danielhkuo/electsim/ballotgen"
	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/election"
	"github.com/danielhkuo/electsim/metrics"
	"github.com/danielhkuo/electsim/middleware"
	"github.com/danielhkuo/electsim/models"
	"github.com/danielhkuo/electsim/quota"
	"github.com/danielhkuo/electsim/strategic"
)

type ToolsHandler struct {
	cfg cliparse.Config
}

func NewToolsHandler(cfg cliparse.Config) *ToolsHandler {
	return &ToolsHandler{cfg: cfg}
}

// Apportion allocates seats over raw vote counts
func (h *ToolsHandler) Apportion(w http.ResponseWriter, r *http.Request) {
	var req models.ApportionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Votes) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votes are required")
		return
	}
	if msg, ok := checkLimits(h.cfg, 0, len(req.Votes)); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	if req.Threshold < 0 || req.Threshold > 100 || math.IsNaN(req.Threshold) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "threshold must be between 0 and 100")
		return
	}
	method, err := apportion.ParseMethod(req.Method)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := apportion.EntriesFromMap(req.Votes)
	for _, e := range entries {
		if e.Votes < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("votes for %s must not be negative", e.ID))
			return
		}
	}
	shares := metrics.Shares(req.Votes)

	var pool []apportion.Entry
	var excluded []string
	for _, e := range entries {
		if shares[e.ID] >= req.Threshold {
			pool = append(pool, e)
		} else {
			excluded = append(excluded, e.ID)
		}
	}

	alloc, err := apportion.Allocate(pool, req.Seats, method)
	if err != nil {
		calculationError(w, err, "failed to apportion seats", "method", string(method))
		return
	}

	seats := make(map[string]int, len(entries))
	total := 0.0
	for _, e := range entries {
		seats[e.ID] = alloc[e.ID]
		total += e.Votes
	}
	seatShares := metrics.SeatShares(seats)

	middleware.JSONResponse(w, http.StatusOK, models.ApportionResponse{
		Method:     string(method),
		Seats:      seats,
		TotalSeats: req.Seats,
		TotalVotes: total,
		VoteShares: shares,
		SeatShares: seatShares,
		Excluded:   excluded,
		Indices: election.Indices{
			LoosemoreHanby: metrics.LoosemoreHanby(shares, seatShares),
			Gallagher:      metrics.Gallagher(shares, seatShares),
		},
		NaturalThreshold: quota.NaturalThreshold(req.Seats),
	})
}

// GenerateBallots draws an ideological electorate over the given candidates
func (h *ToolsHandler) GenerateBallots(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateBallotsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg, ok := checkLimits(h.cfg, len(req.Candidates), 0); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	if h.cfg.MaxVoters > 0 && req.NumVoters > h.cfg.MaxVoters {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("num_voters exceeds the limit of %d", h.cfg.MaxVoters))
		return
	}
	dist, err := ballotgen.ParseDistribution(req.Distribution)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	res, err := ballotgen.New(seed).Generate(req.Candidates, req.NumVoters, dist)
	if err != nil {
		if errors.Is(err, ballotgen.ErrNoCandidates) || errors.Is(err, ballotgen.ErrInvalidVoters) {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		calculationError(w, err, "failed to generate ballots")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GenerateBallotsResponse{Result: res, Seed: seed})
}

// StrategicVoting compares a sincere FPTP result against strategic defection
func (h *ToolsHandler) StrategicVoting(w http.ResponseWriter, r *http.Request) {
	var in strategic.Input
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg, ok := checkLimits(h.cfg, len(in.Candidates), len(in.Parties)); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	res, err := strategic.SimulateFPTP(in, nil)
	if err != nil {
		calculationError(w, err, "failed to simulate strategic voting")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}
