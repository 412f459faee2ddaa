// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoosemoreHanby(t *testing.T) {
	tests := []struct {
		name  string
		votes map[string]float64
		seats map[string]float64
		want  float64
	}{
		{"identical", map[string]float64{"A": 60, "B": 40}, map[string]float64{"A": 60, "B": 40}, 0},
		{"simple", map[string]float64{"A": 50, "B": 30, "C": 20}, map[string]float64{"A": 60, "B": 40, "C": 0}, 20},
		{"missing seat id", map[string]float64{"A": 70, "B": 30}, map[string]float64{"A": 100}, 30},
		{"missing vote id", map[string]float64{"A": 100}, map[string]float64{"A": 50, "B": 50}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LoosemoreHanby(tt.votes, tt.seats), 1e-9)
		})
	}
}

func TestGallagher(t *testing.T) {
	votes := map[string]float64{"A": 50, "B": 30, "C": 20}
	seats := map[string]float64{"A": 60, "B": 40, "C": 0}
	// (100 + 100 + 400) / 2 = 300
	assert.InDelta(t, math.Sqrt(300), Gallagher(votes, seats), 1e-9)

	assert.Zero(t, Gallagher(votes, votes))
	assert.Zero(t, Gallagher(nil, nil))
}

func TestGallagherProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for trial := 0; trial < 200; trial++ {
		votes := map[string]float64{}
		seats := map[string]float64{}
		n := 1 + rng.IntN(6)
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			votes[id] = rng.Float64() * 100
			seats[id] = rng.Float64() * 100
		}

		g := Gallagher(votes, seats)
		assert.GreaterOrEqual(t, g, 0.0)
		assert.Zero(t, Gallagher(votes, votes))

		// Gallagher never exceeds Loosemore-Hanby times sqrt(2)
		assert.LessOrEqual(t, g, LoosemoreHanby(votes, seats)*math.Sqrt2+1e-9)
	}
}

func TestShares(t *testing.T) {
	got := Shares(map[string]float64{"A": 3, "B": 1})
	assert.InDelta(t, 75, got["A"], 1e-9)
	assert.InDelta(t, 25, got["B"], 1e-9)

	zero := Shares(map[string]float64{"A": 0, "B": 0})
	assert.Equal(t, map[string]float64{"A": 0, "B": 0}, zero)

	seats := SeatShares(map[string]int{"A": 1, "B": 3})
	assert.InDelta(t, 25, seats["A"], 1e-9)
	assert.InDelta(t, 75, seats["B"], 1e-9)
}
