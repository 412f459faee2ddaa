// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranked

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cands(ids ...string) []Candidate {
	out := make([]Candidate, len(ids))
	for i, id := range ids {
		out[i] = Candidate{ID: id, Name: "Candidate " + id}
	}
	return out
}

func ballot(count float64, prefs ...string) Ballot {
	return Ballot{Preferences: prefs, Count: count}
}

func outcome(t *testing.T, outcomes []Outcome, id string) Outcome {
	t.Helper()
	for _, o := range outcomes {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("no outcome for %s", id)
	return Outcome{}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		ballots    []Ballot
		want       error
	}{
		{"no candidates", nil, []Ballot{ballot(1, "A")}, ErrNoCandidates},
		{"no ballots", cands("A", "B"), nil, ErrNoBallots},
		{"zero total", cands("A", "B"), []Ballot{ballot(0, "A")}, ErrNoVoters},
		{"negative count", cands("A"), []Ballot{ballot(-3, "A")}, ErrNegativeCount},
		{"unknown candidate", cands("A", "B"), []Ballot{ballot(1, "A", "Z")}, ErrUnknownCandidate},
		{"duplicate preference", cands("A", "B"), []Ballot{ballot(1, "A", "A")}, ErrDuplicatePreference},
		{"duplicate candidate", []Candidate{{ID: "A"}, {ID: "A"}}, []Ballot{ballot(1, "A")}, ErrDuplicateCandidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IRV(tt.candidates, tt.ballots)
			assert.True(t, errors.Is(err, tt.want), "IRV: %v", err)

			_, err = STV(tt.candidates, tt.ballots, 2)
			assert.True(t, errors.Is(err, tt.want), "STV: %v", err)
		})
	}

	_, err := STV(cands("A"), []Ballot{ballot(1, "A")}, 0)
	assert.ErrorIs(t, err, ErrInvalidSeats)
}

func TestIRVEliminationThenMajority(t *testing.T) {
	res, err := IRV(cands("A", "B", "C"), []Ballot{
		ballot(45, "A", "B"),
		ballot(30, "B", "A"),
		ballot(25, "C", "A"),
	})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, DecidedMajority, res.DecidedBy)
	assert.Equal(t, []string{"C"}, res.EliminationOrder)
	require.Len(t, res.Rounds, 2)

	assert.Equal(t, map[string]float64{"A": 45, "B": 30, "C": 25}, res.Rounds[0].Tallies)
	assert.Equal(t, ActionEliminated, res.Rounds[0].Action)
	assert.Equal(t, "C", res.Rounds[0].CandidateID)

	assert.Equal(t, map[string]float64{"A": 70, "B": 30}, res.Rounds[1].Tallies)
	assert.Equal(t, ActionWinner, res.Rounds[1].Action)

	assert.Equal(t, 70.0, outcome(t, res.Candidates, "A").Votes)
	assert.Equal(t, 45.0, outcome(t, res.Candidates, "A").FirstPreferences)
	assert.True(t, outcome(t, res.Candidates, "C").Eliminated)
	assert.Zero(t, res.Exhausted)
	assert.Nil(t, res.CondorcetViolation)
	assert.Equal(t, "A", res.Condorcet.Winner)
}

func TestIRVFirstRoundMajority(t *testing.T) {
	res, err := IRV(cands("A", "B"), []Ballot{ballot(60, "A"), ballot(40, "B")})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Empty(t, res.EliminationOrder)
	require.Len(t, res.Rounds, 1)
	assert.Equal(t, ActionWinner, res.Rounds[0].Action)
}

func TestIRVExactHalfIsNotMajority(t *testing.T) {
	res, err := IRV(cands("A", "B"), []Ballot{ballot(50, "A"), ballot(50, "B")})
	require.NoError(t, err)

	// 50 of 100 is not a majority; the tie for last eliminates A first.
	assert.Equal(t, []string{"A"}, res.EliminationOrder)
	assert.Equal(t, "B", res.Winner)
	assert.Equal(t, DecidedLastRemaining, res.DecidedBy)
}

func TestIRVExhaustedBallots(t *testing.T) {
	res, err := IRV(cands("A", "B", "C"), []Ballot{
		ballot(40, "A"),
		ballot(30, "B"),
		ballot(30, "C", "B"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, res.EliminationOrder)
	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, 30.0, res.Exhausted)
	assert.InDelta(t, 30.0, res.ExhaustedPct, 1e-9)
	assert.Equal(t, 70.0, res.Rounds[1].ActiveTotal)
}

func TestIRVSingleCandidate(t *testing.T) {
	res, err := IRV(cands("A"), []Ballot{ballot(12, "A")})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, DecidedSingleCandidate, res.DecidedBy)
	assert.Empty(t, res.Rounds)
	assert.Equal(t, 12.0, outcome(t, res.Candidates, "A").Votes)
}

func TestIRVAllExhausted(t *testing.T) {
	res, err := IRV(cands("A", "B"), []Ballot{ballot(10)})
	require.NoError(t, err)

	assert.Empty(t, res.Winner)
	assert.Equal(t, DecidedNoVotes, res.DecidedBy)
	assert.Equal(t, res.TotalBallots, res.Exhausted)
	assert.InDelta(t, 100.0, res.ExhaustedPct, 1e-9)
}

func TestIRVCondorcetViolation(t *testing.T) {
	candidates := []Candidate{{ID: "A", Name: "Al"}, {ID: "B", Name: "Bea"}, {ID: "C", Name: "Cy"}}
	res, err := IRV(candidates, []Ballot{
		ballot(35, "A", "B", "C"),
		ballot(34, "C", "B", "A"),
		ballot(31, "B", "A", "C"),
	})
	require.NoError(t, err)

	assert.Equal(t, "A", res.Winner)
	assert.Equal(t, "B", res.Condorcet.Winner)
	require.NotNil(t, res.CondorcetViolation)
	assert.Equal(t, Violation{CondorcetWinner: "Bea", RunoffWinner: "Al"}, *res.CondorcetViolation)
}

func TestSTVSurplusTransfers(t *testing.T) {
	res, err := STV(cands("A", "B", "C"), []Ballot{
		ballot(60, "A", "C"),
		ballot(25, "B"),
		ballot(15, "C"),
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, 34.0, res.Quota)
	assert.Equal(t, []string{"A", "C"}, res.Elected)
	require.Len(t, res.Rounds, 2)

	assert.Equal(t, ActionElected, res.Rounds[0].Action)
	assert.InDelta(t, 26, res.Rounds[0].Surplus, 1e-9)
	assert.InDelta(t, 26.0/60, res.Rounds[0].TransferValue, 1e-9)
	assert.InDelta(t, 41, res.Rounds[1].Tallies["C"], 1e-9)
	assert.InDelta(t, 7, res.Rounds[1].Surplus, 1e-9)

	assert.InDelta(t, 34, outcome(t, res.Candidates, "A").Votes, 1e-9)
	assert.InDelta(t, 34, outcome(t, res.Candidates, "C").Votes, 1e-9)
	assert.InDelta(t, 25, outcome(t, res.Candidates, "B").Votes, 1e-9)
	assert.InDelta(t, 7, res.Exhausted, 1e-9)
	assert.InDelta(t, 7, res.ExhaustedSurplus, 1e-9)
}

func TestSTVEliminationTransfersAtFullValue(t *testing.T) {
	res, err := STV(cands("A", "B", "C", "D"), []Ballot{
		ballot(40, "A"),
		ballot(25, "B", "C"),
		ballot(20, "C"),
		ballot(15, "D", "C"),
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, res.Elected)
	require.Len(t, res.Rounds, 3)
	assert.Equal(t, ActionEliminated, res.Rounds[1].Action)
	assert.Equal(t, "D", res.Rounds[1].CandidateID)
	assert.InDelta(t, 35, res.Rounds[2].Tallies["C"], 1e-9)

	d := outcome(t, res.Candidates, "D")
	assert.True(t, d.Eliminated)
	assert.Zero(t, d.Votes)
	assert.Equal(t, 2, d.Round)

	assert.InDelta(t, 7, res.Exhausted, 1e-9)
	assert.InDelta(t, 7, res.ExhaustedSurplus, 1e-9)
}

func TestSTVElectsRemaining(t *testing.T) {
	res, err := STV(cands("A", "B", "C"), []Ballot{
		ballot(50, "A"),
		ballot(26, "B"),
		ballot(24, "C"),
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.Elected)
	last := res.Rounds[len(res.Rounds)-1]
	assert.Equal(t, ActionElectedRemaining, last.Action)
	assert.Equal(t, []string{"B"}, last.CandidateIDs)
	assert.InDelta(t, 26, outcome(t, res.Candidates, "B").Votes, 1e-9)
	assert.InDelta(t, 40, res.Exhausted, 1e-9)
}

func TestSTVFewerCandidatesThanSeats(t *testing.T) {
	res, err := STV(cands("A", "B"), []Ballot{ballot(3, "A"), ballot(2, "B", "A")}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.Elected)
	assert.Empty(t, res.Rounds)
	assert.Equal(t, 3.0, outcome(t, res.Candidates, "A").Votes)
	assert.Equal(t, 2.0, outcome(t, res.Candidates, "B").Votes)
}

func TestSTVAllExhausted(t *testing.T) {
	res, err := STV(cands("A", "B", "C"), []Ballot{ballot(9)}, 1)
	require.NoError(t, err)

	assert.Equal(t, res.TotalBallots, res.Exhausted)
	assert.Len(t, res.Elected, 1)
}

func TestSTVDoesNotMutateInput(t *testing.T) {
	ballots := []Ballot{
		ballot(60, "A", "C"),
		ballot(25, "B"),
		ballot(15, "C", "B"),
	}
	before := make([]Ballot, len(ballots))
	for i, b := range ballots {
		before[i] = Ballot{Preferences: append([]string(nil), b.Preferences...), Count: b.Count}
	}

	_, err := STV(cands("A", "B", "C"), ballots, 2)
	require.NoError(t, err)

	if diff := cmp.Diff(before, ballots); diff != "" {
		t.Errorf("ballots changed (-before +after):\n%s", diff)
	}
}

func TestSTVConservesWeight(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 24))
	ids := []string{"A", "B", "C", "D", "E", "F", "G"}

	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.IntN(len(ids)-1)
		candidates := cands(ids[:n]...)

		ballots := make([]Ballot, 1+rng.IntN(12))
		for i := range ballots {
			perm := rng.Perm(n)
			prefs := make([]string, rng.IntN(n+1))
			for j := range prefs {
				prefs[j] = ids[perm[j]]
			}
			ballots[i] = ballot(float64(1+rng.IntN(50)), prefs...)
		}
		seats := 1 + rng.IntN(n)

		res, err := STV(candidates, ballots, seats)
		require.NoError(t, err)

		sum := res.Exhausted
		for _, o := range res.Candidates {
			sum += o.Votes
		}
		assert.InDelta(t, res.TotalBallots, sum, 1e-6, "trial %d", trial)
		assert.Len(t, res.Elected, seats, "trial %d", trial)
		assert.False(t, res.NonConverged)
		assert.LessOrEqual(t, res.ExhaustedSurplus, res.Exhausted+1e-9)
	}
}

func TestAdvanceSkipsInactive(t *testing.T) {
	st := []status{eliminated, elected, active, eliminated}
	b := workingBallot{prefs: []int{0, 1, 2, 3}, count: 1, weight: 1}

	b.advance(st)
	assert.Equal(t, 2, b.cursor)

	st[2] = eliminated
	b.advance(st)
	assert.True(t, b.exhausted())
}

func TestBorda(t *testing.T) {
	res, err := Borda(cands("A", "B", "C"), []Ballot{
		ballot(10, "A", "B", "C"),
		ballot(5, "B", "C", "A"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"A": 20, "B": 20, "C": 5}, res.Points)
	assert.Equal(t, []string{"A", "B", "C"}, res.Ranking)
}

func TestCondorcetCycle(t *testing.T) {
	res, err := Condorcet(cands("A", "B", "C"), []Ballot{
		ballot(1, "A", "B", "C"),
		ballot(1, "B", "C", "A"),
		ballot(1, "C", "A", "B"),
	})
	require.NoError(t, err)

	assert.True(t, res.Paradox)
	assert.Empty(t, res.Winner)
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, res.Wins)
	assert.Equal(t, 2.0, res.Pairwise["A"]["B"])
	assert.Equal(t, 1.0, res.Pairwise["B"]["A"])
}

func TestCondorcetAbsentRanksLast(t *testing.T) {
	res, err := Condorcet(cands("A", "B", "C"), []Ballot{
		ballot(3, "A"),
		ballot(2, "B", "C"),
	})
	require.NoError(t, err)

	// A beats B 3-2 and C 3-2; B beats C 2-0.
	assert.Equal(t, "A", res.Winner)
	assert.False(t, res.Paradox)
	assert.Equal(t, 0.0, res.Pairwise["C"]["B"])
	assert.Equal(t, 2, res.Wins["A"])
}
