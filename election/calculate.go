// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/electsim/ranked"
	"github.com/danielhkuo/electsim/tiebreak"
)

type calcFunc func(*calc) (*Result, error)

// calculators has exactly one entry per System.
var calculators = map[System]calcFunc{
	FPTP:      calcFPTP,
	TRS:       calcTRS,
	IRV:       calcIRV,
	PartyList: calcPartyList,
	STV:       calcSTV,
	MMP:       calcMMP,
	Parallel:  calcParallel,
	Borda:     calcBorda,
	Condorcet: calcCondorcet,
}

// calc carries the inputs and lookup tables of one calculation.
type calc struct {
	system     System
	e          Election
	p          Params
	resolver   *tiebreak.Resolver
	candidates map[string]int
	parties    map[string]int
}

// Calculate runs one system over an election. The election is only read.
func Calculate(system System, e Election, p Params) (*Result, error) {
	fn, ok := calculators[system]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSystem, system)
	}

	c, err := newCalc(system, e, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", system, err)
	}

	res, err := fn(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", system, err)
	}
	res.System = system
	res.Title = system.Title()
	return res, nil
}

func newCalc(system System, e Election, p Params) (*calc, error) {
	if p.Threshold < 0 || p.Threshold > 100 || math.IsNaN(p.Threshold) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, p.Threshold)
	}

	c := &calc{
		system:     system,
		e:          e,
		p:          p,
		resolver:   tiebreak.New(p.Random),
		candidates: make(map[string]int, len(e.Candidates)),
		parties:    make(map[string]int, len(e.Parties)),
	}
	for i, party := range e.Parties {
		c.parties[party.ID] = i
	}
	for i, cand := range e.Candidates {
		c.candidates[cand.ID] = i
		if len(e.Parties) > 0 && cand.PartyID != "" {
			if _, ok := c.parties[cand.PartyID]; !ok {
				return nil, fmt.Errorf("%w: %s (candidate %s)", ErrUnknownParty, cand.PartyID, cand.ID)
			}
		}
	}
	return c, nil
}

// partyColor returns the color of the candidate's party, if any.
func (c *calc) partyColor(partyID string) string {
	if i, ok := c.parties[partyID]; ok {
		return c.e.Parties[i].Color
	}
	return ""
}

// entityOutcome returns an Outcome prefilled with the entity's identity.
// Under RankParties the ids are party ids.
func (c *calc) entityOutcome(id string) Outcome {
	if c.p.RankParties {
		if i, ok := c.parties[id]; ok {
			party := c.e.Parties[i]
			return Outcome{ID: party.ID, Name: party.Name, PartyID: party.ID, Color: party.Color}
		}
		return Outcome{ID: id, Name: id}
	}
	if i, ok := c.candidates[id]; ok {
		cand := c.e.Candidates[i]
		return Outcome{ID: cand.ID, Name: cand.Name, PartyID: cand.PartyID, Color: c.partyColor(cand.PartyID)}
	}
	return Outcome{ID: id, Name: id}
}

// candidateVotes returns one tally per candidate in input order. Explicit
// candidate votes win; otherwise first preferences of the ballots are used.
func (c *calc) candidateVotes() ([]float64, error) {
	votes := make([]float64, len(c.e.Candidates))

	if len(c.e.CandidateVotes) > 0 {
		for id, v := range c.e.CandidateVotes {
			i, ok := c.candidates[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCandidate, id)
			}
			if !validVotes(v) {
				return nil, fmt.Errorf("%w: %s has %v", ErrNegativeVotes, id, v)
			}
			votes[i] = v
		}
		return votes, nil
	}

	ballots, err := c.ballotCounts()
	if err != nil {
		return nil, err
	}
	for _, b := range ballots {
		if len(b.Preferences) == 0 {
			continue
		}
		i, ok := c.candidates[b.Preferences[0]]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCandidate, b.Preferences[0])
		}
		votes[i] += b.Count
	}
	return votes, nil
}

// validVotes reports whether v is a usable finite non-negative tally.
func validVotes(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// ballotCounts resolves ballot percentages into counts.
func (c *calc) ballotCounts() ([]ranked.Ballot, error) {
	out := make([]ranked.Ballot, len(c.e.Ballots))
	for i, b := range c.e.Ballots {
		count := b.Count
		if b.Percentage != nil {
			if c.p.TotalVoters <= 0 {
				return nil, fmt.Errorf("%w: ballot %d", ErrMissingVoterTotal, i)
			}
			if !validVotes(*b.Percentage) {
				return nil, fmt.Errorf("%w: ballot %d has %v%%", ErrNegativeVotes, i, *b.Percentage)
			}
			count = math.Round(*b.Percentage / 100 * c.p.TotalVoters)
		}
		if !validVotes(count) {
			return nil, fmt.Errorf("%w: ballot %d has count %v", ErrNegativeVotes, i, count)
		}
		out[i] = ranked.Ballot{Preferences: b.Preferences, Count: count}
	}
	return out, nil
}

// entrants returns what ballots rank: candidates, or parties under RankParties.
func (c *calc) entrants() []ranked.Candidate {
	if c.p.RankParties {
		out := make([]ranked.Candidate, len(c.e.Parties))
		for i, p := range c.e.Parties {
			out[i] = ranked.Candidate{ID: p.ID, Name: p.Name}
		}
		return out
	}
	out := make([]ranked.Candidate, len(c.e.Candidates))
	for i, cand := range c.e.Candidates {
		out[i] = ranked.Candidate{ID: cand.ID, Name: cand.Name}
	}
	return out
}

func (c *calc) requireEntrants() error {
	if c.p.RankParties {
		if len(c.e.Parties) == 0 {
			return ErrNoParties
		}
		return nil
	}
	if len(c.e.Candidates) == 0 {
		return ErrNoCandidates
	}
	return nil
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func sortByVotes(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Votes > outcomes[j].Votes })
}

func calcFPTP(c *calc) (*Result, error) {
	if len(c.e.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	votes, err := c.candidateVotes()
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindCandidate, TotalSeats: 1}
	for _, v := range votes {
		res.TotalVotes += v
	}

	contenders := make([]tiebreak.Contender, len(votes))
	res.Outcomes = make([]Outcome, len(votes))
	for i, cand := range c.e.Candidates {
		o := c.entityOutcome(cand.ID)
		o.Votes = votes[i]
		o.Percentage = percent(votes[i], res.TotalVotes)
		res.Outcomes[i] = o
		contenders[i] = tiebreak.Contender{ID: cand.ID, Name: cand.Name, Votes: votes[i]}
	}

	if err := c.declare(res, contenders); err != nil {
		return nil, err
	}
	sortByVotes(res.Outcomes)
	return res, nil
}

// declare resolves the single winner among contenders and flags it on res.
func (c *calc) declare(res *Result, contenders []tiebreak.Contender) error {
	tie, err := c.resolver.Resolve(contenders)
	if err != nil {
		return err
	}
	if tie == nil {
		return nil
	}

	res.Winners = []string{tie.Winner.ID}
	for i := range res.Outcomes {
		if res.Outcomes[i].ID == tie.Winner.ID {
			res.Outcomes[i].Winner = true
			res.Outcomes[i].Elected = true
		}
	}
	if tie.TieDetected {
		res.Tie = tie
		res.TieNotice = tiebreak.Notice(tie, c.system.Title())
	}
	res.Notes = append(res.Notes, fmt.Sprintf("%s wins with %s votes (%.1f%%)",
		tie.Winner.Name, humanize.Commaf(tie.Winner.Votes), percent(tie.Winner.Votes, res.TotalVotes)))
	return nil
}

// calcTRS runs a two-round system. Without a first-round majority the top two
// meet in a runoff decided by the ballots' relative preferences, or by the
// first-round lead when no ballots were given.
func calcTRS(c *calc) (*Result, error) {
	if len(c.e.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	votes, err := c.candidateVotes()
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindCandidate, TotalSeats: 1}
	for _, v := range votes {
		res.TotalVotes += v
	}

	order := make([]int, len(votes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return votes[order[a]] > votes[order[b]] })

	res.Outcomes = make([]Outcome, len(order))
	for k, i := range order {
		o := c.entityOutcome(c.e.Candidates[i].ID)
		o.Votes = votes[i]
		o.Percentage = percent(votes[i], res.TotalVotes)
		o.Round = 1
		res.Outcomes[k] = o
	}

	if len(order) == 1 || res.Outcomes[0].Percentage > 50 {
		return res, c.declare(res, []tiebreak.Contender{contenderOf(res.Outcomes[0])})
	}

	res.Outcomes[0].Note = "advanced to runoff"
	res.Outcomes[1].Note = "advanced to runoff"
	res.Outcomes[0].Round = 2
	res.Outcomes[1].Round = 2

	first, second := res.Outcomes[0], res.Outcomes[1]
	if len(c.e.Ballots) == 0 {
		res.Notes = append(res.Notes, "No majority in the first round; runoff simulated from first-round votes")
		return res, c.declare(res, []tiebreak.Contender{contenderOf(first), contenderOf(second)})
	}

	ballots, err := c.ballotCounts()
	if err != nil {
		return nil, err
	}
	runoff := map[string]float64{first.ID: 0, second.ID: 0}
	for _, b := range ballots {
		for _, pref := range b.Preferences {
			if pref == first.ID || pref == second.ID {
				runoff[pref] += b.Count
				break
			}
		}
	}

	res.Notes = append(res.Notes, fmt.Sprintf("Runoff: %s %s, %s %s",
		first.Name, humanize.Commaf(runoff[first.ID]), second.Name, humanize.Commaf(runoff[second.ID])))

	// declare reports runoff totals against the first-round turnout
	saved := res.TotalVotes
	res.TotalVotes = runoff[first.ID] + runoff[second.ID]
	err = c.declare(res, []tiebreak.Contender{
		{ID: first.ID, Name: first.Name, Votes: runoff[first.ID]},
		{ID: second.ID, Name: second.Name, Votes: runoff[second.ID]},
	})
	res.TotalVotes = saved
	return res, err
}

func contenderOf(o Outcome) tiebreak.Contender {
	return tiebreak.Contender{ID: o.ID, Name: o.Name, Votes: o.Votes}
}

func calcIRV(c *calc) (*Result, error) {
	if err := c.requireEntrants(); err != nil {
		return nil, err
	}
	ballots, err := c.ballotCounts()
	if err != nil {
		return nil, err
	}

	r, err := ranked.IRV(c.entrants(), ballots)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Kind:             KindCandidate,
		TotalVotes:       r.TotalBallots,
		TotalSeats:       1,
		Exhausted:        r.Exhausted,
		ExhaustedPct:     r.ExhaustedPct,
		Rounds:           r.Rounds,
		EliminationOrder: r.EliminationOrder,
		Condorcet:        r.Condorcet,
		NonConverged:     r.NonConverged,
	}

	for _, ro := range r.Candidates {
		o := c.entityOutcome(ro.ID)
		o.Votes = ro.Votes
		o.Percentage = percent(ro.Votes, r.TotalBallots)
		o.Winner = ro.Elected
		o.Elected = ro.Elected
		o.Eliminated = ro.Eliminated
		o.Round = ro.Round
		res.Outcomes = append(res.Outcomes, o)
	}
	sortByVotes(res.Outcomes)

	if r.Winner != "" {
		res.Winners = []string{r.Winner}
		res.Notes = append(res.Notes, fmt.Sprintf("Decided in the %s round by %s",
			humanize.Ordinal(max(len(r.Rounds), 1)), r.DecidedBy))
	} else {
		res.Notes = append(res.Notes, "No winner: every ballot was exhausted")
	}

	if v := r.CondorcetViolation; v != nil {
		res.Paradoxes = append(res.Paradoxes, Paradox{
			Type:        "condorcet_violation",
			Description: fmt.Sprintf("%s beats every rival head to head but %s won the runoff", v.CondorcetWinner, v.RunoffWinner),
		})
	}
	return res, nil
}

func calcSTV(c *calc) (*Result, error) {
	if err := c.requireEntrants(); err != nil {
		return nil, err
	}
	if c.p.Seats <= 0 {
		return nil, ErrInvalidSeats
	}
	ballots, err := c.ballotCounts()
	if err != nil {
		return nil, err
	}

	r, err := ranked.STV(c.entrants(), ballots, c.p.Seats)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Kind:         KindMultiWinner,
		TotalVotes:   r.TotalBallots,
		TotalSeats:   r.Seats,
		Winners:      r.Elected,
		Quota:        r.Quota,
		Exhausted:    r.Exhausted,
		ExhaustedPct: r.ExhaustedPct,
		Rounds:       r.Rounds,
		NonConverged: r.NonConverged,
	}
	for _, ro := range r.Candidates {
		o := c.entityOutcome(ro.ID)
		o.Votes = ro.Votes
		o.Percentage = percent(ro.FirstPreferences, r.TotalBallots)
		o.Elected = ro.Elected
		o.Winner = ro.Elected
		o.Eliminated = ro.Eliminated
		o.Round = ro.Round
		if ro.Elected {
			o.Seats = 1
		}
		res.Outcomes = append(res.Outcomes, o)
	}
	sortByVotes(res.Outcomes)

	res.Notes = append(res.Notes, fmt.Sprintf("Droop quota %s of %s ballots",
		humanize.Commaf(r.Quota), humanize.Commaf(r.TotalBallots)))
	if r.ExhaustedSurplus > 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("%s votes exhausted during surplus transfers",
			humanize.CommafWithDigits(r.ExhaustedSurplus, 2)))
	}
	return res, nil
}

func calcBorda(c *calc) (*Result, error) {
	if err := c.requireEntrants(); err != nil {
		return nil, err
	}
	ballots, err := c.ballotCounts()
	if err != nil {
		return nil, err
	}

	r, err := ranked.Borda(c.entrants(), ballots)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindBorda, TotalVotes: r.TotalBallots, TotalSeats: 1}
	totalPoints := 0.0
	for _, p := range r.Points {
		totalPoints += p
	}

	var contenders []tiebreak.Contender
	for _, ent := range c.entrants() {
		o := c.entityOutcome(ent.ID)
		o.Points = r.Points[ent.ID]
		o.Votes = o.Points
		o.Percentage = percent(o.Points, totalPoints)
		res.Outcomes = append(res.Outcomes, o)
		contenders = append(contenders, tiebreak.Contender{ID: ent.ID, Name: ent.Name, Votes: o.Points})
	}

	if err := c.declare(res, contenders); err != nil {
		return nil, err
	}
	// declare speaks of votes; Borda counts points
	res.Notes = nil
	if len(res.Winners) > 0 {
		w, _ := res.Outcome(res.Winners[0])
		res.Notes = append(res.Notes, fmt.Sprintf("%s wins with %s points", w.Name, humanize.Commaf(w.Points)))
	}
	sortByVotes(res.Outcomes)
	return res, nil
}

func calcCondorcet(c *calc) (*Result, error) {
	if err := c.requireEntrants(); err != nil {
		return nil, err
	}
	ballots, err := c.ballotCounts()
	if err != nil {
		return nil, err
	}

	r, err := ranked.Condorcet(c.entrants(), ballots)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindCondorcet, TotalSeats: 1, Condorcet: r}
	for _, b := range ballots {
		res.TotalVotes += b.Count
	}

	for _, ent := range c.entrants() {
		o := c.entityOutcome(ent.ID)
		o.PairwiseWins = r.Wins[ent.ID]
		if ent.ID == r.Winner {
			o.Winner = true
			o.Elected = true
		}
		res.Outcomes = append(res.Outcomes, o)
	}
	sort.SliceStable(res.Outcomes, func(i, j int) bool {
		return res.Outcomes[i].PairwiseWins > res.Outcomes[j].PairwiseWins
	})

	if r.Winner != "" {
		res.Winners = []string{r.Winner}
		w, _ := res.Outcome(r.Winner)
		res.Notes = append(res.Notes, fmt.Sprintf("%s beats all %d rivals head to head", w.Name, len(res.Outcomes)-1))
	}
	if r.Paradox {
		res.Paradoxes = append(res.Paradoxes, Paradox{
			Type:        "condorcet_paradox",
			Description: "No candidate beats every other head to head; collective preferences are cyclic or tied",
		})
	}
	return res, nil
}
