// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/electsim/apportion"
	"github.com/danielhkuo/electsim/metrics"
	"github.com/danielhkuo/electsim/quota"
	"github.com/danielhkuo/electsim/tiebreak"
)

// partyVotes returns one tally per party in input order. Explicit party votes
// win; otherwise candidate votes are summed by party.
func (c *calc) partyVotes() ([]float64, error) {
	if len(c.e.Parties) == 0 {
		return nil, ErrNoParties
	}
	votes := make([]float64, len(c.e.Parties))

	if len(c.e.PartyVotes) > 0 {
		for id, v := range c.e.PartyVotes {
			i, ok := c.parties[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParty, id)
			}
			if !validVotes(v) {
				return nil, fmt.Errorf("%w: %s has %v", ErrNegativeVotes, id, v)
			}
			votes[i] = v
		}
		return votes, nil
	}

	cv, err := c.candidateVotes()
	if err != nil {
		return nil, err
	}
	for i, cand := range c.e.Candidates {
		if j, ok := c.parties[cand.PartyID]; ok {
			votes[j] += cv[i]
		}
	}
	return votes, nil
}

// listTier is the outcome of allocating seats over the parties that clear
// the threshold.
type listTier struct {
	votes      []float64
	total      float64
	percentage []float64
	below      []bool
	seats      apportion.Allocation
}

func (c *calc) allocateList(votes []float64, seats int) (*listTier, error) {
	method, err := apportion.ParseMethod(string(c.p.Method))
	if err != nil {
		return nil, err
	}

	t := &listTier{
		votes:      votes,
		percentage: make([]float64, len(votes)),
		below:      make([]bool, len(votes)),
		seats:      apportion.Allocation{},
	}
	for _, v := range votes {
		t.total += v
	}

	var pool []apportion.Entry
	for i, party := range c.e.Parties {
		t.percentage[i] = percent(votes[i], t.total)
		if t.percentage[i] >= c.p.Threshold {
			pool = append(pool, apportion.Entry{ID: party.ID, Votes: votes[i]})
		} else {
			t.below[i] = true
		}
	}

	if seats == 0 {
		return t, nil
	}
	t.seats, err = apportion.Allocate(pool, seats, method)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// indices scores final seats against every party's share of the vote.
func (c *calc) indices(t *listTier, seats map[string]int) *Indices {
	voteShares := make(map[string]float64, len(c.e.Parties))
	for i, party := range c.e.Parties {
		voteShares[party.ID] = t.percentage[i]
	}
	seatShares := metrics.SeatShares(seats)
	return &Indices{
		LoosemoreHanby: metrics.LoosemoreHanby(voteShares, seatShares),
		Gallagher:      metrics.Gallagher(voteShares, seatShares),
	}
}

func (c *calc) partyOutcome(i int, t *listTier) Outcome {
	party := c.e.Parties[i]
	return Outcome{
		ID:             party.ID,
		Name:           party.Name,
		PartyID:        party.ID,
		Color:          party.Color,
		Votes:          t.votes[i],
		Percentage:     t.percentage[i],
		BelowThreshold: t.below[i],
	}
}

func sortBySeats(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		if outcomes[i].Seats != outcomes[j].Seats {
			return outcomes[i].Seats > outcomes[j].Seats
		}
		return outcomes[i].Votes > outcomes[j].Votes
	})
}

func (c *calc) thresholdNote(t *listTier) []string {
	n := 0
	for _, b := range t.below {
		if b {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	noun := "parties"
	if n == 1 {
		noun = "party"
	}
	return []string{fmt.Sprintf("%d %s below the %.1f%% threshold excluded from list seats", n, noun, c.p.Threshold)}
}

func calcPartyList(c *calc) (*Result, error) {
	if c.p.Seats <= 0 {
		return nil, ErrInvalidSeats
	}
	votes, err := c.partyVotes()
	if err != nil {
		return nil, err
	}

	t, err := c.allocateList(votes, c.p.Seats)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Kind:             KindParty,
		TotalVotes:       t.total,
		TotalSeats:       c.p.Seats,
		Threshold:        c.p.Threshold,
		NaturalThreshold: quota.NaturalThreshold(c.p.Seats),
		Indices:          c.indices(t, t.seats),
		Notes:            c.thresholdNote(t),
	}
	for i := range c.e.Parties {
		o := c.partyOutcome(i, t)
		o.Seats = t.seats[o.ID]
		o.SeatPercentage = percent(float64(o.Seats), float64(c.p.Seats))
		o.Elected = o.Seats > 0
		res.Outcomes = append(res.Outcomes, o)
		if o.Elected {
			res.Winners = append(res.Winners, o.ID)
		}
	}
	sortBySeats(res.Outcomes)
	return res, nil
}

// districtTier is the single-member half of a mixed system.
type districtTier struct {
	won     map[string]int
	results []DistrictResult
	seats   int
}

// districts elects one member per district, or without districts the
// highest-polling candidates of a single race.
func (c *calc) districts() (*districtTier, error) {
	tier := &districtTier{won: map[string]int{}}

	if len(c.e.Districts) > 0 {
		for _, d := range c.e.Districts {
			var contenders []tiebreak.Contender
			for _, cand := range c.e.Candidates {
				if v, ok := d.Votes[cand.ID]; ok {
					contenders = append(contenders, tiebreak.Contender{ID: cand.ID, Name: cand.Name, Votes: v})
				}
			}
			for id, v := range d.Votes {
				if _, ok := c.candidates[id]; !ok {
					return nil, fmt.Errorf("%w: %s in district %s", ErrUnknownCandidate, id, d.ID)
				}
				if !validVotes(v) {
					return nil, fmt.Errorf("%w: %s in district %s", ErrNegativeVotes, id, d.ID)
				}
			}

			tie, err := c.resolver.Resolve(contenders)
			if err != nil {
				return nil, err
			}
			if tie == nil {
				continue // nobody stood
			}
			if err := tier.seat(c, d.ID, d.Name, tie.Winner); err != nil {
				return nil, err
			}
			if tie.TieDetected {
				tier.results[len(tier.results)-1].Tie = tie
			}
		}
		return tier, nil
	}

	n := c.p.DistrictSeats
	if n <= 0 {
		n = c.p.Seats / 2
	}
	votes, err := c.candidateVotes()
	if err != nil {
		return nil, err
	}

	order := make([]int, len(votes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return votes[order[a]] > votes[order[b]] })

	for k := 0; k < n && k < len(order); k++ {
		cand := c.e.Candidates[order[k]]
		w := tiebreak.Contender{ID: cand.ID, Name: cand.Name, Votes: votes[order[k]]}
		if err := tier.seat(c, fmt.Sprintf("seat-%d", k+1), "", w); err != nil {
			return nil, err
		}
	}
	return tier, nil
}

func (t *districtTier) seat(c *calc, id, name string, w tiebreak.Contender) error {
	cand := c.e.Candidates[c.candidates[w.ID]]
	if _, ok := c.parties[cand.PartyID]; !ok {
		return fmt.Errorf("%w: district winner %s has no listed party", ErrUnknownParty, cand.ID)
	}
	t.won[cand.PartyID]++
	t.seats++
	t.results = append(t.results, DistrictResult{
		ID:       id,
		Name:     name,
		WinnerID: cand.ID,
		PartyID:  cand.PartyID,
		Votes:    w.Votes,
	})
	return nil
}

// mixedSetup runs the district tier and sizes the list tier.
func (c *calc) mixedSetup() (*districtTier, []float64, int, error) {
	if len(c.e.Parties) == 0 {
		return nil, nil, 0, ErrNoParties
	}
	if len(c.e.Candidates) == 0 {
		return nil, nil, 0, ErrNoCandidates
	}

	tier, err := c.districts()
	if err != nil {
		return nil, nil, 0, err
	}

	listSeats := c.p.ListSeats
	if listSeats <= 0 {
		listSeats = c.p.Seats - tier.seats
	}
	if listSeats < 0 || tier.seats+listSeats <= 0 {
		return nil, nil, 0, fmt.Errorf("%w: %d district and %d list seats", ErrInvalidSeats, tier.seats, listSeats)
	}

	votes, err := c.partyVotes()
	if err != nil {
		return nil, nil, 0, err
	}
	return tier, votes, listSeats, nil
}

func (c *calc) mixedResult(tier *districtTier, t *listTier, listSeats int) *Result {
	return &Result{
		Kind:             KindMixed,
		TotalVotes:       t.total,
		Threshold:        c.p.Threshold,
		NaturalThreshold: quota.NaturalThreshold(tier.seats + listSeats),
		DistrictSeats:    tier.seats,
		ListSeats:        listSeats,
		Districts:        tier.results,
		Notes:            c.thresholdNote(t),
	}
}

// calcMMP allocates the whole house proportionally, then tops up each
// party's district seats with list seats. Parties winning more districts
// than their entitlement keep them as overhang.
func calcMMP(c *calc) (*Result, error) {
	tier, votes, listSeats, err := c.mixedSetup()
	if err != nil {
		return nil, err
	}

	t, err := c.allocateList(votes, tier.seats+listSeats)
	if err != nil {
		return nil, err
	}

	res := c.mixedResult(tier, t, listSeats)
	final := make(map[string]int, len(c.e.Parties))
	for i := range c.e.Parties {
		o := c.partyOutcome(i, t)
		o.EntitledSeats = t.seats[o.ID]
		o.DistrictSeats = tier.won[o.ID]
		o.ListSeats = max(0, o.EntitledSeats-o.DistrictSeats)
		o.OverhangSeats = max(0, o.DistrictSeats-o.EntitledSeats)
		o.Seats = o.DistrictSeats + o.ListSeats
		o.Elected = o.Seats > 0

		final[o.ID] = o.Seats
		res.TotalSeats += o.Seats
		res.OverhangSeats += o.OverhangSeats
		res.Outcomes = append(res.Outcomes, o)
	}
	for i := range res.Outcomes {
		res.Outcomes[i].SeatPercentage = percent(float64(res.Outcomes[i].Seats), float64(res.TotalSeats))
		if res.Outcomes[i].Elected {
			res.Winners = append(res.Winners, res.Outcomes[i].ID)
		}
	}
	res.Indices = c.indices(t, final)

	if res.OverhangSeats > 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("%s overhang seats enlarge the house to %s members",
			humanize.Comma(int64(res.OverhangSeats)), humanize.Comma(int64(res.TotalSeats))))
	}
	sortBySeats(res.Outcomes)
	return res, nil
}

// calcParallel allocates list seats independently of district results.
func calcParallel(c *calc) (*Result, error) {
	tier, votes, listSeats, err := c.mixedSetup()
	if err != nil {
		return nil, err
	}

	t, err := c.allocateList(votes, listSeats)
	if err != nil {
		return nil, err
	}

	res := c.mixedResult(tier, t, listSeats)
	final := make(map[string]int, len(c.e.Parties))
	for i := range c.e.Parties {
		o := c.partyOutcome(i, t)
		o.DistrictSeats = tier.won[o.ID]
		o.ListSeats = t.seats[o.ID]
		o.Seats = o.DistrictSeats + o.ListSeats
		o.Elected = o.Seats > 0

		final[o.ID] = o.Seats
		res.TotalSeats += o.Seats
		res.Outcomes = append(res.Outcomes, o)
	}
	for i := range res.Outcomes {
		res.Outcomes[i].SeatPercentage = percent(float64(res.Outcomes[i].Seats), float64(res.TotalSeats))
		if res.Outcomes[i].Elected {
			res.Winners = append(res.Winners, res.Outcomes[i].ID)
		}
	}
	res.Indices = c.indices(t, final)
	sortBySeats(res.Outcomes)
	return res, nil
}
