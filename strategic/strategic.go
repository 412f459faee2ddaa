// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package strategic models tactical voting under first past the post.
package strategic

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/electsim/election"
)

const (
	// SwitchRate is the share of a trailing candidate's voters who defect.
	SwitchRate = 0.6
	// FrontrunnerShare is the share of defectors who back the leader; the
	// rest go to the runner-up.
	FrontrunnerShare = 0.3
)

// Input is a sincere FPTP result plus optional polling that decides who
// voters believe the front two are.
type Input struct {
	Candidates []election.Candidate `json:"candidates"`
	Parties    []election.Party     `json:"parties,omitempty"`
	Sincere    map[string]float64   `json:"sincere_votes"`
	Polling    map[string]float64   `json:"polling_data,omitempty"`
}

// Result compares the sincere and strategic outcomes.
type Result struct {
	SincereVotes    map[string]float64 `json:"sincere_votes"`
	StrategicVotes  map[string]float64 `json:"strategic_votes"`
	VoteChanges     map[string]float64 `json:"vote_changes"`
	Frontrunner     string             `json:"frontrunner,omitempty"`
	RunnerUp        string             `json:"runner_up,omitempty"`
	Switched        float64            `json:"switched"`
	SincereResult   *election.Result   `json:"sincere_result"`
	StrategicResult *election.Result   `json:"strategic_result"`
	WinnerChanged   bool               `json:"winner_changed"`
	Analysis        string             `json:"analysis"`
}

// SimulateFPTP moves SwitchRate of every third-or-lower candidate's voters
// to the front two, rounding down at each step. With fewer than three
// candidates the votes are returned unchanged.
func SimulateFPTP(in Input, random io.Reader) (*Result, error) {
	if len(in.Candidates) == 0 {
		return nil, election.ErrNoCandidates
	}
	known := make(map[string]bool, len(in.Candidates))
	for _, c := range in.Candidates {
		known[c.ID] = true
	}
	for id, v := range in.Sincere {
		if !known[id] {
			return nil, fmt.Errorf("%w: %s", election.ErrUnknownCandidate, id)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s has %v", election.ErrNegativeVotes, id, v)
		}
	}

	res := &Result{
		SincereVotes:   copyVotes(in),
		StrategicVotes: copyVotes(in),
		VoteChanges:    map[string]float64{},
	}

	if len(in.Candidates) < 3 {
		res.Analysis = "Not enough candidates for strategic behavior"
	} else {
		order := standings(in)
		res.Frontrunner, res.RunnerUp = order[0], order[1]

		for _, id := range order[2:] {
			switchers := math.Floor(res.SincereVotes[id] * SwitchRate)
			toFront := math.Floor(switchers * FrontrunnerShare)
			toSecond := switchers - toFront

			res.StrategicVotes[id] -= switchers
			res.StrategicVotes[res.Frontrunner] += toFront
			res.StrategicVotes[res.RunnerUp] += toSecond

			res.VoteChanges[id] = -switchers
			res.VoteChanges[res.Frontrunner] += toFront
			res.VoteChanges[res.RunnerUp] += toSecond
			res.Switched += switchers
		}
		res.Analysis = fmt.Sprintf("%s voters voted strategically", humanize.Commaf(res.Switched))
	}

	var err error
	res.SincereResult, err = fptp(in, res.SincereVotes, random)
	if err != nil {
		return nil, err
	}
	res.StrategicResult, err = fptp(in, res.StrategicVotes, random)
	if err != nil {
		return nil, err
	}

	if len(res.SincereResult.Winners) > 0 && len(res.StrategicResult.Winners) > 0 {
		res.WinnerChanged = res.SincereResult.Winners[0] != res.StrategicResult.Winners[0]
	}
	return res, nil
}

// copyVotes returns a vote for every candidate, zero when absent.
func copyVotes(in Input) map[string]float64 {
	out := make(map[string]float64, len(in.Candidates))
	for _, c := range in.Candidates {
		out[c.ID] = in.Sincere[c.ID]
	}
	return out
}

// standings orders candidates by polling when given, else by sincere votes.
// Equal standing keeps input order.
func standings(in Input) []string {
	score := in.Sincere
	if len(in.Polling) > 0 {
		score = in.Polling
	}

	ids := make([]string, len(in.Candidates))
	for i, c := range in.Candidates {
		ids[i] = c.ID
	}
	sort.SliceStable(ids, func(i, j int) bool { return score[ids[i]] > score[ids[j]] })
	return ids
}

func fptp(in Input, votes map[string]float64, random io.Reader) (*election.Result, error) {
	return election.Calculate(election.FPTP, election.Election{
		Candidates:     in.Candidates,
		Parties:        in.Parties,
		CandidateVotes: votes,
	}, election.Params{Random: random})
}
