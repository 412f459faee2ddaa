// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apportion converts vote counts into a fixed number of seats.

# Methods

Three methods are supported:

	apportion.DHondt       // highest averages, divisors 1, 2, 3, ...
	apportion.SainteLague  // highest averages, divisors 1, 3, 5, ...
	apportion.Hare         // Hare quota with largest remainders

# Usage

Entries are ordered; the order decides ties:

	alloc, err := apportion.Allocate([]apportion.Entry{
		{ID: "A", Votes: 100},
		{ID: "B", Votes: 80},
		{ID: "C", Votes: 30},
	}, 5, apportion.DHondt)
	// alloc = {A: 3, B: 2, C: 0}

AllocateMap accepts a map and orders its keys lexically before allocating.

# Ties

When two entries share the highest quotient (or the same remainder under
Hare) the one that appears first in the input wins the seat.

# Zero votes

Entries with zero votes never receive a quotient. If every entry has zero
votes no seat is awarded and every entry maps to 0.
*/
package apportion
