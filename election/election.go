// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"io"
	"maps"

	"github.com/danielhkuo/electsim/apportion"
	"github.com/danielhkuo/electsim/ranked"
	"github.com/danielhkuo/electsim/tiebreak"
)

var (
	ErrNoCandidates      = errors.New("no candidates")
	ErrNoParties         = errors.New("no parties")
	ErrInvalidSeats      = errors.New("seat count must be positive")
	ErrNegativeVotes     = errors.New("vote counts must be non-negative")
	ErrUnknownCandidate  = errors.New("unknown candidate")
	ErrUnknownParty      = errors.New("unknown party")
	ErrMissingVoterTotal = errors.New("ballot percentages need total_voters")
	ErrInvalidThreshold  = errors.New("threshold must be between 0 and 100")
)

// IsInputError reports whether err was caused by the election or parameters
// rather than by the engine or its random source.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrUnknownSystem, ErrNoCandidates, ErrNoParties, ErrInvalidSeats, ErrNegativeVotes,
		ErrUnknownCandidate, ErrUnknownParty, ErrMissingVoterTotal, ErrInvalidThreshold,
		apportion.ErrInvalidSeats, apportion.ErrNegativeVotes, apportion.ErrDuplicateEntry,
		apportion.ErrUnknownMethod,
		ranked.ErrNoCandidates, ranked.ErrDuplicateCandidate, ranked.ErrNoBallots, ranked.ErrNoVoters,
		ranked.ErrNegativeCount, ranked.ErrUnknownCandidate, ranked.ErrDuplicatePreference,
		ranked.ErrInvalidSeats,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type Candidate struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	PartyID string `json:"party_id,omitempty" yaml:"party_id,omitempty"`
}

type Party struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Ballot is a ranked preference list shared by Count voters. When Percentage
// is set it replaces Count as a share of Params.TotalVoters.
type Ballot struct {
	Preferences []string `json:"preferences" yaml:"preferences"`
	Count       float64  `json:"count,omitempty" yaml:"count,omitempty"`
	Percentage  *float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`
}

// District is one single-member race in a mixed system.
type District struct {
	ID    string             `json:"id" yaml:"id"`
	Name  string             `json:"name,omitempty" yaml:"name,omitempty"`
	Votes map[string]float64 `json:"votes" yaml:"votes"`
}

// Election is everything voters produced. Which fields are read depends on
// the system being calculated.
type Election struct {
	Candidates     []Candidate        `json:"candidates" yaml:"candidates"`
	Parties        []Party            `json:"parties,omitempty" yaml:"parties,omitempty"`
	CandidateVotes map[string]float64 `json:"candidate_votes,omitempty" yaml:"candidate_votes,omitempty"`
	PartyVotes     map[string]float64 `json:"party_votes,omitempty" yaml:"party_votes,omitempty"`
	Ballots        []Ballot           `json:"ballots,omitempty" yaml:"ballots,omitempty"`
	Districts      []District         `json:"districts,omitempty" yaml:"districts,omitempty"`
}

// Clone returns a deep copy sharing no slices or maps with e.
func (e Election) Clone() Election {
	out := Election{
		Candidates:     append([]Candidate(nil), e.Candidates...),
		Parties:        append([]Party(nil), e.Parties...),
		CandidateVotes: maps.Clone(e.CandidateVotes),
		PartyVotes:     maps.Clone(e.PartyVotes),
	}
	if e.Ballots != nil {
		out.Ballots = make([]Ballot, len(e.Ballots))
		for i, b := range e.Ballots {
			nb := Ballot{Preferences: append([]string(nil), b.Preferences...), Count: b.Count}
			if b.Percentage != nil {
				p := *b.Percentage
				nb.Percentage = &p
			}
			out.Ballots[i] = nb
		}
	}
	if e.Districts != nil {
		out.Districts = make([]District, len(e.Districts))
		for i, d := range e.Districts {
			out.Districts[i] = District{ID: d.ID, Name: d.Name, Votes: maps.Clone(d.Votes)}
		}
	}
	return out
}

// Params tunes a calculation. Zero values pick the defaults noted per field.
type Params struct {
	// Seats is the house size for multi-seat systems.
	Seats int `json:"seats,omitempty" yaml:"seats,omitempty"`
	// Threshold is the minimum party vote percentage for list seats.
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Method is the list allocation method, D'Hondt when empty.
	Method apportion.Method `json:"method,omitempty" yaml:"method,omitempty"`
	// DistrictSeats is used by mixed systems without explicit districts,
	// half the house when zero.
	DistrictSeats int `json:"district_seats,omitempty" yaml:"district_seats,omitempty"`
	// ListSeats defaults to the seats left after the district tier.
	ListSeats int `json:"list_seats,omitempty" yaml:"list_seats,omitempty"`
	// TotalVoters converts ballot percentages into counts.
	TotalVoters float64 `json:"total_voters,omitempty" yaml:"total_voters,omitempty"`
	// RankParties makes ballots rank parties instead of candidates.
	RankParties bool `json:"rank_parties,omitempty" yaml:"rank_parties,omitempty"`

	// Random is the tie-break source, crypto/rand when nil.
	Random io.Reader `json:"-" yaml:"-"`
}

// Kind tells which outcome fields of a Result are meaningful.
type Kind string

const (
	KindCandidate   Kind = "candidate"
	KindParty       Kind = "party"
	KindMultiWinner Kind = "multi-winner"
	KindBorda       Kind = "borda"
	KindCondorcet   Kind = "condorcet"
	KindMixed       Kind = "mixed"
)

// Outcome is the per-entity record of a result.
type Outcome struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	PartyID        string  `json:"party_id,omitempty"`
	Color          string  `json:"color,omitempty"`
	Votes          float64 `json:"votes"`
	Percentage     float64 `json:"percentage"`
	Seats          int     `json:"seats,omitempty"`
	SeatPercentage float64 `json:"seat_percentage,omitempty"`
	DistrictSeats  int     `json:"district_seats,omitempty"`
	ListSeats      int     `json:"list_seats,omitempty"`
	EntitledSeats  int     `json:"entitled_seats,omitempty"`
	OverhangSeats  int     `json:"overhang_seats,omitempty"`
	Points         float64 `json:"points,omitempty"`
	PairwiseWins   int     `json:"pairwise_wins,omitempty"`
	Round          int     `json:"round,omitempty"`
	Winner         bool    `json:"winner,omitempty"`
	Elected        bool    `json:"elected,omitempty"`
	Eliminated     bool    `json:"eliminated,omitempty"`
	BelowThreshold bool    `json:"below_threshold,omitempty"`
	Note           string  `json:"note,omitempty"`
}

// Indices holds the disproportionality scores of a seat result.
type Indices struct {
	LoosemoreHanby float64 `json:"loosemore_hanby"`
	Gallagher      float64 `json:"gallagher"`
}

// Paradox is a flagged anomaly such as a Condorcet violation.
type Paradox struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// DistrictResult is the winner of one district race.
type DistrictResult struct {
	ID       string               `json:"id"`
	Name     string               `json:"name,omitempty"`
	WinnerID string               `json:"winner_id"`
	PartyID  string               `json:"party_id"`
	Votes    float64              `json:"votes"`
	Tie      *tiebreak.Resolution `json:"tie,omitempty"`
}

// Result is the outcome of one calculation.
type Result struct {
	System     System    `json:"system"`
	Title      string    `json:"title"`
	Kind       Kind      `json:"kind"`
	Outcomes   []Outcome `json:"results"`
	TotalVotes float64   `json:"total_votes"`
	TotalSeats int       `json:"total_seats,omitempty"`
	Winners    []string  `json:"winners,omitempty"`

	Tie       *tiebreak.Resolution `json:"tie,omitempty"`
	TieNotice string               `json:"tie_notice,omitempty"`

	Quota            float64  `json:"quota,omitempty"`
	Threshold        float64  `json:"threshold,omitempty"`
	NaturalThreshold float64  `json:"natural_threshold,omitempty"`
	Indices          *Indices `json:"indices,omitempty"`

	DistrictSeats int              `json:"district_seats,omitempty"`
	ListSeats     int              `json:"list_seats,omitempty"`
	OverhangSeats int              `json:"overhang_seats,omitempty"`
	Districts     []DistrictResult `json:"districts,omitempty"`

	Exhausted        float64                 `json:"exhausted,omitempty"`
	ExhaustedPct     float64                 `json:"exhausted_pct,omitempty"`
	Rounds           []ranked.Round          `json:"rounds,omitempty"`
	EliminationOrder []string                `json:"elimination_order,omitempty"`
	Condorcet        *ranked.CondorcetResult `json:"condorcet,omitempty"`
	Paradoxes        []Paradox               `json:"paradoxes,omitempty"`
	NonConverged     bool                    `json:"non_converged,omitempty"`

	Notes []string `json:"notes,omitempty"`
}

// Outcome returns the outcome with the given id.
func (r *Result) Outcome(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return Outcome{}, false
}
