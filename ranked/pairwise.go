// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranked

import "sort"

// CondorcetResult is a full pairwise comparison of the candidates.
// Pairwise[a][b] is the number of voters ranking a above b; a candidate left
// off a ballot ranks below every listed one.
type CondorcetResult struct {
	Pairwise map[string]map[string]float64 `json:"pairwise"`
	Wins     map[string]int                `json:"wins"`
	Winner   string                        `json:"winner,omitempty"`
	Paradox  bool                          `json:"paradox"`
}

// BordaResult holds Borda points and the candidates ordered by them.
type BordaResult struct {
	Points       map[string]float64 `json:"points"`
	Ranking      []string           `json:"ranking"`
	TotalBallots float64            `json:"total_ballots"`
}

// Condorcet builds the pairwise matrix and looks for a candidate who beats
// every other head to head. Paradox is set when there are at least two
// candidates and none does.
func Condorcet(candidates []Candidate, ballots []Ballot) (*CondorcetResult, error) {
	c, err := newContest(candidates, ballots)
	if err != nil {
		return nil, err
	}
	return c.condorcet(), nil
}

// Borda awards n-1 points for a first preference, n-2 for a second and so on
// down to 0, where n is the number of candidates.
func Borda(candidates []Candidate, ballots []Ballot) (*BordaResult, error) {
	c, err := newContest(candidates, ballots)
	if err != nil {
		return nil, err
	}

	n := len(c.candidates)
	points := make([]float64, n)
	for _, b := range c.ballots {
		for pos, idx := range b.prefs {
			points[idx] += float64(n-pos-1) * b.count
		}
	}

	res := &BordaResult{
		Points:       make(map[string]float64, n),
		Ranking:      make([]string, n),
		TotalBallots: c.total,
	}
	order := make([]int, n)
	for i, cand := range c.candidates {
		res.Points[cand.ID] = points[i]
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return points[order[i]] > points[order[j]] })
	for i, idx := range order {
		res.Ranking[i] = c.candidates[idx].ID
	}
	return res, nil
}

func (c *contest) pairwise() [][]float64 {
	n := len(c.candidates)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	rank := make([]int, n)
	for _, b := range c.ballots {
		if b.count == 0 || len(b.prefs) == 0 {
			continue
		}
		for i := range rank {
			rank[i] = n
		}
		for pos, idx := range b.prefs {
			rank[idx] = pos
		}
		for a := 0; a < n; a++ {
			for o := 0; o < n; o++ {
				if rank[a] < rank[o] {
					m[a][o] += b.count
				}
			}
		}
	}
	return m
}

// condorcetWinner returns the index of the candidate beating all others, or -1.
func condorcetWinner(m [][]float64) int {
	for a := range m {
		beatsAll := true
		for o := range m {
			if a != o && m[a][o] <= m[o][a] {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			return a
		}
	}
	return -1
}

func (c *contest) condorcet() *CondorcetResult {
	m := c.pairwise()
	n := len(c.candidates)

	res := &CondorcetResult{
		Pairwise: make(map[string]map[string]float64, n),
		Wins:     make(map[string]int, n),
	}
	for a, ca := range c.candidates {
		row := make(map[string]float64, n-1)
		wins := 0
		for o, co := range c.candidates {
			if a == o {
				continue
			}
			row[co.ID] = m[a][o]
			if m[a][o] > m[o][a] {
				wins++
			}
		}
		res.Pairwise[ca.ID] = row
		res.Wins[ca.ID] = wins
	}

	if w := condorcetWinner(m); w >= 0 {
		res.Winner = c.candidates[w].ID
	} else if n > 1 {
		res.Paradox = true
	}
	return res
}
