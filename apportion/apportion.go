// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apportion

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Method names a seat allocation rule.
type Method string

const (
	DHondt      Method = "dhondt"
	SainteLague Method = "sainte-lague"
	Hare        Method = "hare"
)

var (
	// ErrInvalidSeats is returned when the requested seat count is not positive.
	ErrInvalidSeats = errors.New("seat count must be positive")
	// ErrNegativeVotes is returned when an entry carries a negative or NaN vote count.
	ErrNegativeVotes = errors.New("vote counts must be non-negative")
	// ErrDuplicateEntry is returned when the same id appears twice.
	ErrDuplicateEntry = errors.New("duplicate entry id")
	// ErrUnknownMethod is returned for a method other than the ones listed above.
	ErrUnknownMethod = errors.New("unknown allocation method")
)

// Entry is one contender in an allocation.
type Entry struct {
	ID    string  `json:"id"`
	Votes float64 `json:"votes"`
}

// Allocation maps each entry id to its seat count. Every input id is present.
type Allocation map[string]int

// Total returns the number of seats handed out.
func (a Allocation) Total() int {
	total := 0
	for _, s := range a {
		total += s
	}
	return total
}

// ParseMethod maps a method name to a Method. An empty name means D'Hondt.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case "", DHondt:
		return DHondt, nil
	case SainteLague, "sainte_lague", "webster":
		return SainteLague, nil
	case Hare, "largest-remainder":
		return Hare, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Allocate distributes seats among entries using method.
func Allocate(entries []Entry, seats int, method Method) (Allocation, error) {
	if seats <= 0 {
		return nil, ErrInvalidSeats
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Votes < 0 || math.IsNaN(e.Votes) || math.IsInf(e.Votes, 0) {
			return nil, fmt.Errorf("%w: %s has %v", ErrNegativeVotes, e.ID, e.Votes)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.ID)
		}
		seen[e.ID] = true
	}

	switch method {
	case DHondt:
		return highestAverages(entries, seats, func(n int) float64 { return float64(n + 1) }), nil
	case SainteLague:
		return highestAverages(entries, seats, func(n int) float64 { return float64(2*n + 1) }), nil
	case Hare:
		return largestRemainder(entries, seats), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// AllocateMap is Allocate over a map, with ids taken in lexical order.
func AllocateMap(votes map[string]float64, seats int, method Method) (Allocation, error) {
	return Allocate(EntriesFromMap(votes), seats, method)
}

// EntriesFromMap returns the map as entries sorted by id.
func EntriesFromMap(votes map[string]float64) []Entry {
	entries := make([]Entry, 0, len(votes))
	for id, v := range votes {
		entries = append(entries, Entry{ID: id, Votes: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// highestAverages awards seats one at a time to the entry with the largest
// votes/divisor(seatsSoFar). A strict comparison keeps the earliest entry on ties.
func highestAverages(entries []Entry, seats int, divisor func(int) float64) Allocation {
	alloc := emptyAllocation(entries)

	for i := 0; i < seats; i++ {
		best := -1.0
		winner := -1
		for j, e := range entries {
			if e.Votes <= 0 {
				continue
			}
			q := e.Votes / divisor(alloc[e.ID])
			if q > best {
				best = q
				winner = j
			}
		}
		if winner < 0 {
			break // nobody has votes
		}
		alloc[entries[winner].ID]++
	}

	return alloc
}

// largestRemainder implements the Hare quota with largest remainders.
func largestRemainder(entries []Entry, seats int) Allocation {
	alloc := emptyAllocation(entries)

	total := 0.0
	for _, e := range entries {
		total += e.Votes
	}
	if total == 0 {
		return alloc
	}

	type share struct {
		index     int
		remainder float64
	}
	shares := make([]share, 0, len(entries))
	assigned := 0
	for i, e := range entries {
		if e.Votes <= 0 {
			continue
		}
		// votes/quota, written to avoid dividing by a rounded quota
		exact := e.Votes * float64(seats) / total
		automatic := int(math.Floor(exact))
		alloc[e.ID] = automatic
		assigned += automatic
		shares = append(shares, share{index: i, remainder: exact - float64(automatic)})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})

	// Rounding can push the automatic seats one over; take it back from the
	// smallest remainder that holds a seat.
	for k := len(shares) - 1; assigned > seats && k >= 0; k-- {
		id := entries[shares[k].index].ID
		if alloc[id] > 0 {
			alloc[id]--
			assigned--
		}
	}

	for k := 0; assigned < seats && len(shares) > 0; k++ {
		alloc[entries[shares[k%len(shares)].index].ID]++
		assigned++
	}

	return alloc
}

func emptyAllocation(entries []Entry) Allocation {
	alloc := make(Allocation, len(entries))
	for _, e := range entries {
		alloc[e.ID] = 0
	}
	return alloc
}
