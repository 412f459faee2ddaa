// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranked

import "log/slog"

// How an IRV count ended.
const (
	DecidedMajority        = "majority"
	DecidedLastRemaining   = "last_remaining"
	DecidedSingleCandidate = "single_candidate"
	DecidedNoVotes         = "no_votes"
	DecidedRoundLimit      = "round_limit"
)

// IRVResult is the outcome of an instant-runoff count.
type IRVResult struct {
	Winner             string           `json:"winner,omitempty"`
	DecidedBy          string           `json:"decided_by"`
	Candidates         []Outcome        `json:"candidates"`
	EliminationOrder   []string         `json:"elimination_order"`
	TotalBallots       float64          `json:"total_ballots"`
	Exhausted          float64          `json:"exhausted"`
	ExhaustedPct       float64          `json:"exhausted_pct"`
	Rounds             []Round          `json:"rounds"`
	NonConverged       bool             `json:"non_converged,omitempty"`
	Condorcet          *CondorcetResult `json:"condorcet"`
	CondorcetViolation *Violation       `json:"condorcet_violation,omitempty"`
}

// Violation reports a Condorcet winner who lost the runoff.
type Violation struct {
	CondorcetWinner string `json:"condorcet_winner"`
	RunoffWinner    string `json:"runoff_winner"`
}

// IRV runs an instant-runoff count. Each round every ballot counts in full
// for its highest-ranked remaining candidate. A candidate holding more than
// half of the non-exhausted votes wins; otherwise the last-placed candidate
// is eliminated. Ties for last place eliminate the earliest candidate.
func IRV(candidates []Candidate, ballots []Ballot) (*IRVResult, error) {
	c, err := newContest(candidates, ballots)
	if err != nil {
		return nil, err
	}

	n := len(c.candidates)
	st := make([]status, n)
	decidedRound := make([]int, n)
	res := &IRVResult{
		TotalBallots:     c.total,
		EliminationOrder: []string{},
		Rounds:           []Round{},
	}

	tallies, exhausted := c.tally(st)
	first := tallies
	winner := -1

	if n == 1 {
		winner = 0
		res.DecidedBy = DecidedSingleCandidate
	}

	for round := 1; winner < 0; round++ {
		if round > n {
			res.NonConverged = true
			res.DecidedBy = DecidedRoundLimit
			slog.Warn("irv round limit reached", "candidates", n, "eliminated", len(res.EliminationOrder))
			break
		}

		tallies, exhausted = c.tally(st)
		snap, activeTotal := c.snapshot(tallies, st, active)
		r := Round{Number: round, Tallies: snap, Exhausted: exhausted, ActiveTotal: activeTotal}

		lead := highest(tallies, st, active)
		switch {
		case n-len(res.EliminationOrder) == 1:
			winner = lead
			res.DecidedBy = DecidedLastRemaining
		case activeTotal > 0 && tallies[lead] > activeTotal/2:
			winner = lead
			res.DecidedBy = DecidedMajority
		case activeTotal == 0:
			res.DecidedBy = DecidedNoVotes
		}

		if winner >= 0 {
			r.Action = ActionWinner
			r.CandidateID = c.candidates[winner].ID
			decidedRound[winner] = round
			res.Rounds = append(res.Rounds, r)
			break
		}
		if res.DecidedBy == DecidedNoVotes {
			break
		}

		loser := lowest(tallies, st, active)
		st[loser] = eliminated
		decidedRound[loser] = round
		res.EliminationOrder = append(res.EliminationOrder, c.candidates[loser].ID)

		r.Action = ActionEliminated
		r.CandidateID = c.candidates[loser].ID
		res.Rounds = append(res.Rounds, r)
	}

	res.Exhausted = exhausted
	res.ExhaustedPct = percentOf(exhausted, c.total)

	res.Candidates = make([]Outcome, n)
	for i, cand := range c.candidates {
		res.Candidates[i] = Outcome{
			ID:               cand.ID,
			Name:             cand.Name,
			Votes:            tallies[i],
			FirstPreferences: first[i],
			Elected:          i == winner,
			Eliminated:       st[i] == eliminated,
			Round:            decidedRound[i],
		}
	}

	if winner >= 0 {
		res.Winner = c.candidates[winner].ID
	}

	res.Condorcet = c.condorcet()
	if winner >= 0 && res.Condorcet.Winner != "" && res.Condorcet.Winner != res.Winner {
		res.CondorcetViolation = &Violation{
			CondorcetWinner: c.candidates[c.index[res.Condorcet.Winner]].label(),
			RunoffWinner:    c.candidates[winner].label(),
		}
	}

	return res, nil
}
