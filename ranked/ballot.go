// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranked

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoCandidates        = errors.New("no candidates")
	ErrDuplicateCandidate  = errors.New("duplicate candidate id")
	ErrNoBallots           = errors.New("no ballots")
	ErrNoVoters            = errors.New("ballots carry no votes")
	ErrNegativeCount       = errors.New("ballot count must be non-negative")
	ErrUnknownCandidate    = errors.New("ballot references unknown candidate")
	ErrDuplicatePreference = errors.New("ballot ranks a candidate twice")
	ErrInvalidSeats        = errors.New("seat count must be positive")
)

// Candidate is an entity that can be ranked on a ballot.
type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c Candidate) label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Ballot is a preference order shared by Count voters.
type Ballot struct {
	Preferences []string `json:"preferences"`
	Count       float64  `json:"count"`
}

// Action is the state change recorded by a round.
type Action string

const (
	ActionEliminated       Action = "eliminated"
	ActionElected          Action = "elected"
	ActionElectedRemaining Action = "elected_remaining"
	ActionWinner           Action = "winner"
)

// Round is one tally followed by one state change.
type Round struct {
	Number        int                `json:"round"`
	Tallies       map[string]float64 `json:"tallies"`
	Action        Action             `json:"action"`
	CandidateID   string             `json:"candidate_id,omitempty"`
	CandidateIDs  []string           `json:"candidate_ids,omitempty"`
	Surplus       float64            `json:"surplus,omitempty"`
	TransferValue float64            `json:"transfer_value,omitempty"`
	Exhausted     float64            `json:"exhausted"`
	ActiveTotal   float64            `json:"active_total"`
}

// Outcome is the final record for one candidate. Round is the round in which
// the candidate was elected or eliminated, 0 if neither happened in a round.
type Outcome struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Votes            float64 `json:"votes"`
	FirstPreferences float64 `json:"first_preferences"`
	Elected          bool    `json:"elected"`
	Eliminated       bool    `json:"eliminated"`
	Round            int     `json:"round,omitempty"`
}

type status uint8

const (
	active status = iota
	eliminated
	elected
	electedRemaining
)

// workingBallot is the per-call copy of a Ballot. The cursor only moves
// forward and weight only shrinks.
type workingBallot struct {
	prefs  []int
	count  float64
	weight float64
	cursor int
}

// advance moves the cursor past eliminated and quota-elected candidates.
func (b *workingBallot) advance(st []status) {
	for b.cursor < len(b.prefs) {
		s := st[b.prefs[b.cursor]]
		if s != eliminated && s != elected {
			return
		}
		b.cursor++
	}
}

func (b *workingBallot) exhausted() bool { return b.cursor >= len(b.prefs) }
func (b *workingBallot) current() int    { return b.prefs[b.cursor] }
func (b *workingBallot) value() float64  { return b.count * b.weight }

// contest holds the validated inputs of a single calculation.
type contest struct {
	candidates []Candidate
	index      map[string]int
	ballots    []workingBallot
	total      float64
}

func newContest(candidates []Candidate, ballots []Ballot) (*contest, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if len(ballots) == 0 {
		return nil, ErrNoBallots
	}

	c := &contest{
		candidates: candidates,
		index:      make(map[string]int, len(candidates)),
		ballots:    make([]workingBallot, len(ballots)),
	}
	for i, cand := range candidates {
		if _, dup := c.index[cand.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCandidate, cand.ID)
		}
		c.index[cand.ID] = i
	}

	for i, b := range ballots {
		if b.Count < 0 || math.IsNaN(b.Count) || math.IsInf(b.Count, 0) {
			return nil, fmt.Errorf("%w: ballot %d has %v", ErrNegativeCount, i, b.Count)
		}

		prefs := make([]int, len(b.Preferences))
		seen := make(map[int]bool, len(b.Preferences))
		for j, id := range b.Preferences {
			idx, ok := c.index[id]
			if !ok {
				return nil, fmt.Errorf("%w: ballot %d ranks %q", ErrUnknownCandidate, i, id)
			}
			if seen[idx] {
				return nil, fmt.Errorf("%w: ballot %d ranks %q", ErrDuplicatePreference, i, id)
			}
			seen[idx] = true
			prefs[j] = idx
		}

		c.ballots[i] = workingBallot{prefs: prefs, count: b.Count, weight: 1}
		c.total += b.Count
	}

	if c.total == 0 {
		return nil, ErrNoVoters
	}
	return c, nil
}

// tally advances every ballot and sums its value onto its current preference.
func (c *contest) tally(st []status) (tallies []float64, exhausted float64) {
	tallies = make([]float64, len(c.candidates))
	for i := range c.ballots {
		b := &c.ballots[i]
		b.advance(st)
		if b.exhausted() {
			exhausted += b.value()
			continue
		}
		tallies[b.current()] += b.value()
	}
	return tallies, exhausted
}

// snapshot returns the tallies of candidates whose status is in keep.
func (c *contest) snapshot(tallies []float64, st []status, keep ...status) (map[string]float64, float64) {
	out := make(map[string]float64)
	sum := 0.0
	for i, cand := range c.candidates {
		for _, k := range keep {
			if st[i] == k {
				out[cand.ID] = tallies[i]
				sum += tallies[i]
				break
			}
		}
	}
	return out, sum
}

// highest returns the candidate with the largest tally among those with
// status s, preferring the earliest on ties. It returns -1 if none qualify.
func highest(tallies []float64, st []status, s status) int {
	best := -1
	for i := range tallies {
		if st[i] != s {
			continue
		}
		if best < 0 || tallies[i] > tallies[best] {
			best = i
		}
	}
	return best
}

// lowest is the minimum counterpart of highest.
func lowest(tallies []float64, st []status, s status) int {
	worst := -1
	for i := range tallies {
		if st[i] != s {
			continue
		}
		if worst < 0 || tallies[i] < tallies[worst] {
			worst = i
		}
	}
	return worst
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
