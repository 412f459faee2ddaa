// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballotgen synthesises ranked ballots from a one-dimensional model
// of voter ideology.
//
// Candidates sit evenly spaced on [0, 1] in the order given. Each voter is
// drawn from a distribution over the same line and ranks candidates by
// distance. Identical rankings are merged into one ballot with a count.
package ballotgen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/danielhkuo/electsim/ranked"
)

var (
	ErrNoCandidates        = errors.New("no candidates")
	ErrInvalidVoters       = errors.New("voter count must be positive")
	ErrUnknownDistribution = errors.New("unknown distribution")
)

// Distribution is a shape of voter ideology.
type Distribution string

const (
	Normal    Distribution = "normal"    // centred bell curve
	Polarized Distribution = "polarized" // two peaks near the ends
	Left      Distribution = "left"      // Beta(2, 5)
	Right     Distribution = "right"     // Beta(5, 2)
	Uniform   Distribution = "uniform"
)

// ParseDistribution maps a name to a Distribution; "" means Normal.
func ParseDistribution(name string) (Distribution, error) {
	d := Distribution(strings.ToLower(strings.TrimSpace(name)))
	switch d {
	case "":
		return Normal, nil
	case Normal, Polarized, Left, Right, Uniform:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDistribution, name)
}

// Result is a generated electorate.
type Result struct {
	Ballots       []ranked.Ballot `json:"ballots"`
	TotalVoters   int             `json:"total_voters"`
	UniqueBallots int             `json:"unique_ballots"`
	Distribution  Distribution    `json:"distribution"`
}

// Generator draws voters from its own random stream. It is not safe for
// concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator whose output is fully determined by seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandom returns a Generator seeded from the runtime's random source.
func NewRandom() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Generate draws voters and returns their merged ballots in order of first
// appearance.
func (g *Generator) Generate(candidateIDs []string, voters int, d Distribution) (*Result, error) {
	if len(candidateIDs) == 0 {
		return nil, ErrNoCandidates
	}
	if voters <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVoters, voters)
	}
	d, err := ParseDistribution(string(d))
	if err != nil {
		return nil, err
	}

	n := len(candidateIDs)
	positions := make([]float64, n)
	for i := range positions {
		if n > 1 {
			positions[i] = float64(i) / float64(n-1)
		}
	}

	index := map[string]int{}
	var ballots []ranked.Ballot
	order := make([]int, n)
	var key strings.Builder

	for v := 0; v < voters; v++ {
		pos := clamp(g.position(d))

		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return math.Abs(positions[order[a]]-pos) < math.Abs(positions[order[b]]-pos)
		})

		key.Reset()
		for _, i := range order {
			fmt.Fprintf(&key, "%d,", i)
		}
		if at, ok := index[key.String()]; ok {
			ballots[at].Count++
			continue
		}

		prefs := make([]string, n)
		for k, i := range order {
			prefs[k] = candidateIDs[i]
		}
		index[key.String()] = len(ballots)
		ballots = append(ballots, ranked.Ballot{Preferences: prefs, Count: 1})
	}

	return &Result{
		Ballots:       ballots,
		TotalVoters:   voters,
		UniqueBallots: len(ballots),
		Distribution:  d,
	}, nil
}

func (g *Generator) position(d Distribution) float64 {
	switch d {
	case Normal:
		return 0.5 + 0.2*g.rng.NormFloat64()
	case Polarized:
		if g.rng.Float64() < 0.5 {
			return 0.2 + 0.1*g.rng.NormFloat64()
		}
		return 0.8 + 0.1*g.rng.NormFloat64()
	case Left:
		return g.beta(2, 5)
	case Right:
		return g.beta(5, 2)
	default:
		return g.rng.Float64()
	}
}

// beta draws Beta(a, b) for integer shapes as a ratio of Gamma draws, each
// Gamma(k) being a sum of k unit exponentials.
func (g *Generator) beta(a, b int) float64 {
	x, y := g.gamma(a), g.gamma(b)
	return x / (x + y)
}

func (g *Generator) gamma(k int) float64 {
	sum := 0.0
	for i := 0; i < k; i++ {
		sum += g.rng.ExpFloat64()
	}
	return sum
}

func clamp(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
