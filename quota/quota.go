// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package quota computes the vote thresholds used by STV and list PR.
//
// All functions are pure. Callers compute a quota once per election and
// hold on to it; nothing here caches.
package quota

import "math"

// Droop returns floor(total/(seats+1)) + 1, the smallest vote count that
// no more than seats candidates can reach at the same time.
func Droop(total float64, seats int) float64 {
	if seats < 1 {
		seats = 1
	}
	return math.Floor(total/float64(seats+1)) + 1
}

// Hare returns total/seats, the quota used by largest-remainder allocation.
// It returns 0 when seats is not positive.
func Hare(total float64, seats int) float64 {
	if seats <= 0 {
		return 0
	}
	return total / float64(seats)
}

// NaturalThreshold returns the vote percentage (0-100) that guarantees at
// least one seat when seats are allocated proportionally: 100/(seats+1).
func NaturalThreshold(seats int) float64 {
	if seats < 0 {
		seats = 0
	}
	return 100 / float64(seats+1)
}
