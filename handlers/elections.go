// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/election"
	"github.com/danielhkuo/electsim/middleware"
	"github.com/danielhkuo/electsim/models"
	"github.com/danielhkuo/electsim/ranked"
)

type ElectionHandler struct {
	cfg cliparse.Config
}

func NewElectionHandler(cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{cfg: cfg}
}

// Calculate runs one electoral system
func (h *ElectionHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	system, err := election.ParseSystem(req.System)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := checkLimits(h.cfg, len(req.Candidates), len(req.Parties)); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	res, err := election.Calculate(system, req.Election, req.Params)
	if err != nil {
		calculationError(w, err, "failed to calculate election", "system", system.String())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// Compare runs several systems over the same election
func (h *ElectionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	systems := election.Systems()
	if len(req.Systems) > 0 {
		systems = make([]election.System, 0, len(req.Systems))
		seen := make(map[election.System]bool, len(req.Systems))
		for _, name := range req.Systems {
			s, err := election.ParseSystem(name)
			if err != nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
				return
			}
			if !seen[s] {
				seen[s] = true
				systems = append(systems, s)
			}
		}
	}
	if msg, ok := checkLimits(h.cfg, len(req.Candidates), len(req.Parties)); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	comparisons, err := election.Compare(r.Context(), systems, req.Election, req.Params)
	if err != nil {
		slog.Warn("comparison cancelled", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Comparison cancelled")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CompareResponse{Comparisons: comparisons})
}

// STV runs a single transferable vote count with an explicit seat count
func (h *ElectionHandler) STV(w http.ResponseWriter, r *http.Request) {
	var req models.STVRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg, ok := checkLimits(h.cfg, len(req.Candidates), 0); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	res, err := ranked.STV(req.Candidates, req.Ballots, req.Seats)
	if err != nil {
		calculationError(w, err, "failed to run STV count")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// checkLimits enforces the configured candidate ceiling on candidate and party lists.
func checkLimits(cfg cliparse.Config, candidates, parties int) (string, bool) {
	if cfg.MaxCandidates <= 0 {
		return "", true
	}
	if candidates > cfg.MaxCandidates {
		return fmt.Sprintf("Too many candidates (maximum %d)", cfg.MaxCandidates), false
	}
	if parties > cfg.MaxCandidates {
		return fmt.Sprintf("Too many parties (maximum %d)", cfg.MaxCandidates), false
	}
	return "", true
}

// calculationError maps input errors to 400 and anything else to 500.
func calculationError(w http.ResponseWriter, err error, logMsg string, attrs ...any) {
	if election.IsInputError(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error(logMsg, append(attrs, "error", err)...)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Calculation failed")
}
