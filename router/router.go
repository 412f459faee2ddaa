// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/electsim/cliparse"
	"github.com/danielhkuo/electsim/election"
	"github.com/danielhkuo/electsim/handlers"
	"github.com/danielhkuo/electsim/middleware"
	"github.com/danielhkuo/electsim/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(cfg)
	toolsHandler := handlers.NewToolsHandler(cfg)
	scenarioHandler := handlers.NewScenarioHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{
			Status:   "healthy",
			Version:  Version,
			Features: features(),
		})
	})

	// Election calculation
	mux.HandleFunc("POST /elections/calculate", middleware.WithLogging(electionHandler.Calculate))
	mux.HandleFunc("POST /elections/compare", middleware.WithLogging(electionHandler.Compare))
	mux.HandleFunc("POST /stv/calculate", middleware.WithLogging(electionHandler.STV))

	// Stand-alone tools
	mux.HandleFunc("POST /apportion", middleware.WithLogging(toolsHandler.Apportion))
	mux.HandleFunc("POST /ballots/generate", middleware.WithLogging(toolsHandler.GenerateBallots))
	mux.HandleFunc("POST /strategic-voting/simulate", middleware.WithLogging(toolsHandler.StrategicVoting))

	// Scenario store
	mux.HandleFunc("POST /scenarios", middleware.WithLogging(scenarioHandler.SaveScenario))
	mux.HandleFunc("GET /scenarios/{slug}", middleware.WithLogging(scenarioHandler.GetScenario))
	mux.HandleFunc("POST /scenarios/{slug}/results", middleware.WithLogging(scenarioHandler.RecordResult))
	mux.HandleFunc("GET /scenarios/{slug}/results", middleware.WithLogging(scenarioHandler.GetResults))
	mux.HandleFunc("DELETE /scenarios/{id}", middleware.WithLogging(scenarioHandler.DeleteScenario))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.ErrorResponse(w, http.StatusNotFound, "No such endpoint")
			return
		}
		w.Write([]byte("electsim API v1"))
	})

	return mux
}

func features() []string {
	out := make([]string, 0, len(election.Systems())+4)
	for _, s := range election.Systems() {
		out = append(out, s.String())
	}
	return append(out, "apportion", "ballot_generation", "strategic_voting", "scenarios")
}
