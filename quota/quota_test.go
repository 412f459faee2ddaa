// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDroop(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		seats int
		want  float64
	}{
		{"single seat", 100, 1, 51},
		{"three seats", 100, 3, 26},
		{"four seats of 1000", 1000, 4, 201},
		{"zero ballots", 0, 3, 1},
		{"odd total", 7, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Droop(tt.total, tt.seats))
		})
	}
}

func TestDroopDefiningProperty(t *testing.T) {
	for total := 0; total <= 500; total += 7 {
		for seats := 1; seats <= 12; seats++ {
			q := Droop(float64(total), seats)
			n := float64(seats + 1)
			assert.Greater(t, q*n, float64(total), "total=%d seats=%d", total, seats)
			assert.LessOrEqual(t, (q-1)*n, float64(total), "total=%d seats=%d", total, seats)
		}
	}
}

func TestHare(t *testing.T) {
	assert.Equal(t, 25.0, Hare(100, 4))
	assert.Equal(t, 0.0, Hare(100, 0))
}

func TestNaturalThreshold(t *testing.T) {
	assert.InDelta(t, 50.0, NaturalThreshold(1), 1e-12)
	assert.InDelta(t, 100.0/11, NaturalThreshold(10), 1e-12)
	assert.InDelta(t, 100.0, NaturalThreshold(0), 1e-12)
}
