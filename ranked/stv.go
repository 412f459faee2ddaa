// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranked

import (
	"log/slog"
	"math"

	"github.com/danielhkuo/electsim/quota"
)

// QuotaTolerance absorbs floating point drift when comparing a tally to the quota.
const QuotaTolerance = 1e-9

// STVResult is the outcome of a single transferable vote count.
type STVResult struct {
	Seats            int       `json:"seats"`
	Quota            float64   `json:"quota"`
	TotalBallots     float64   `json:"total_ballots"`
	Elected          []string  `json:"elected"`
	Candidates       []Outcome `json:"candidates"`
	Exhausted        float64   `json:"exhausted"`
	ExhaustedSurplus float64   `json:"exhausted_surplus"`
	ExhaustedPct     float64   `json:"exhausted_pct"`
	Rounds           []Round   `json:"rounds"`
	NonConverged     bool      `json:"non_converged,omitempty"`
}

// STV fills seats with the Droop quota and Gregory surplus transfers.
//
// Each round tallies ballots at their current weight. The strongest candidate
// at or above quota is elected and every ballot sitting with them moves on at
// weight*surplus/tally. When no one reaches quota and the open seats cover the
// remaining candidates, they are all elected. Otherwise the weakest candidate
// is eliminated and their ballots move on at full weight.
func STV(candidates []Candidate, ballots []Ballot, seats int) (*STVResult, error) {
	if seats <= 0 {
		return nil, ErrInvalidSeats
	}
	c, err := newContest(candidates, ballots)
	if err != nil {
		return nil, err
	}

	n := len(c.candidates)
	st := make([]status, n)
	decidedRound := make([]int, n)
	kept := make([]float64, n)

	res := &STVResult{
		Seats:        seats,
		Quota:        quota.Droop(c.total, seats),
		TotalBallots: c.total,
		Elected:      []string{},
		Rounds:       []Round{},
	}

	first, _ := c.tally(st)

	if n <= seats {
		for i, cand := range c.candidates {
			st[i] = electedRemaining
			res.Elected = append(res.Elected, cand.ID)
		}
	}

	limit := max(2*seats, n)
	electedCount, eliminatedCount := len(res.Elected), 0

	for round := 1; electedCount < seats && electedCount+eliminatedCount < n; round++ {
		if round > limit {
			res.NonConverged = true
			slog.Warn("stv round limit reached", "rounds", limit, "elected", electedCount, "seats", seats)
			break
		}

		tallies, exhausted := c.tally(st)
		snap, activeTotal := c.snapshot(tallies, st, active)
		r := Round{Number: round, Tallies: snap, Exhausted: exhausted, ActiveTotal: activeTotal}

		if w := highest(tallies, st, active); tallies[w] >= res.Quota-QuotaTolerance {
			surplus := math.Max(0, tallies[w]-res.Quota)
			tv := surplus / tallies[w]

			st[w] = elected
			decidedRound[w] = round
			kept[w] = tallies[w] - surplus
			electedCount++
			res.Elected = append(res.Elected, c.candidates[w].ID)

			for i := range c.ballots {
				b := &c.ballots[i]
				if b.exhausted() || b.current() != w {
					continue
				}
				b.weight *= tv
				b.cursor++
				b.advance(st)
				if b.exhausted() {
					res.ExhaustedSurplus += b.value()
				}
			}

			r.Action = ActionElected
			r.CandidateID = c.candidates[w].ID
			r.Surplus = surplus
			r.TransferValue = tv
			res.Rounds = append(res.Rounds, r)
			continue
		}

		if open := seats - electedCount; n-electedCount-eliminatedCount <= open {
			for i, cand := range c.candidates {
				if st[i] != active {
					continue
				}
				st[i] = electedRemaining
				decidedRound[i] = round
				electedCount++
				res.Elected = append(res.Elected, cand.ID)
				r.CandidateIDs = append(r.CandidateIDs, cand.ID)
			}
			r.Action = ActionElectedRemaining
			res.Rounds = append(res.Rounds, r)
			break
		}

		loser := lowest(tallies, st, active)
		st[loser] = eliminated
		decidedRound[loser] = round
		eliminatedCount++

		r.Action = ActionEliminated
		r.CandidateID = c.candidates[loser].ID
		res.Rounds = append(res.Rounds, r)
	}

	// Whatever the ballots hold now is what remaining candidates finish with.
	holdings, exhausted := c.tally(st)
	res.Exhausted = exhausted
	res.ExhaustedPct = percentOf(exhausted, c.total)

	res.Candidates = make([]Outcome, n)
	for i, cand := range c.candidates {
		o := Outcome{
			ID:               cand.ID,
			Name:             cand.Name,
			FirstPreferences: first[i],
			Round:            decidedRound[i],
		}
		switch st[i] {
		case elected:
			o.Votes = kept[i]
			o.Elected = true
		case electedRemaining:
			o.Votes = holdings[i]
			o.Elected = true
		case active:
			o.Votes = holdings[i]
		case eliminated:
			o.Eliminated = true
		}
		res.Candidates[i] = o
	}

	return res, nil
}
