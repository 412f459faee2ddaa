// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics scores how far a seat distribution strays from the vote
// distribution that produced it.
//
// Both indices take percentage maps keyed by entity id. An id missing from
// one map counts as 0% there.
package metrics

import (
	"math"
	"sort"
)

// LoosemoreHanby returns half the sum of absolute differences between vote
// and seat shares.
func LoosemoreHanby(votes, seats map[string]float64) float64 {
	sum := 0.0
	for _, id := range unionKeys(votes, seats) {
		sum += math.Abs(votes[id] - seats[id])
	}
	return sum / 2
}

// Gallagher returns the least-squares index sqrt(sum((v-s)^2)/2).
func Gallagher(votes, seats map[string]float64) float64 {
	sum := 0.0
	for _, id := range unionKeys(votes, seats) {
		d := votes[id] - seats[id]
		sum += d * d
	}
	return math.Sqrt(sum / 2)
}

// Shares converts raw counts into percentages of their total. A zero total
// yields 0% for every id.
func Shares(counts map[string]float64) map[string]float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}

	out := make(map[string]float64, len(counts))
	for id, c := range counts {
		if total > 0 {
			out[id] = c / total * 100
		} else {
			out[id] = 0
		}
	}
	return out
}

// SeatShares is Shares for integer seat counts.
func SeatShares(seats map[string]int) map[string]float64 {
	counts := make(map[string]float64, len(seats))
	for id, s := range seats {
		counts[id] = float64(s)
	}
	return Shares(counts)
}

// unionKeys returns the sorted union of both key sets so sums are taken in a
// fixed order.
func unionKeys(a, b map[string]float64) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
