// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ranked counts ranked ballots.

It provides instant-runoff (IRV), single transferable vote with Gregory
surplus transfers (STV), a Condorcet pairwise analysis and a Borda count.

Every call copies the ballots it is given into a private working set, so the
caller's slices are never modified. Ties for first or last place are broken
in favour of the candidate listed earliest.

	res, err := ranked.STV(candidates, []ranked.Ballot{
		{Preferences: []string{"A", "C"}, Count: 60},
		{Preferences: []string{"B"}, Count: 25},
	}, 2)
*/
package ranked
