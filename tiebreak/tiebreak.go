// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tiebreak picks a single winner from contenders, settling ties at the
// top by lot.
package tiebreak

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
)

// MethodRandomLot is reported on every resolution that had to draw lots.
const MethodRandomLot = "cryptographic_random_lot"

// Contender is one entity competing for a single win.
type Contender struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Votes float64 `json:"votes"`
}

// Resolution describes how a winner was chosen.
type Resolution struct {
	Winner       Contender   `json:"winner"`
	TieDetected  bool        `json:"tie_detected"`
	TiedEntities []Contender `json:"tied_entities,omitempty"`
	TieVotes     float64     `json:"tie_votes,omitempty"`
	Method       string      `json:"method,omitempty"`
	NumTied      int         `json:"num_tied,omitempty"`
}

// Resolver draws lots from a random source.
type Resolver struct {
	rand io.Reader
}

// New returns a Resolver reading from r. A nil r uses crypto/rand.Reader.
func New(r io.Reader) *Resolver {
	if r == nil {
		r = rand.Reader
	}
	return &Resolver{rand: r}
}

// Resolve returns the contender with the most votes. When several share the
// maximum, one of them is chosen uniformly at random. An empty slice yields
// a nil Resolution.
func (r *Resolver) Resolve(contenders []Contender) (*Resolution, error) {
	if len(contenders) == 0 {
		return nil, nil
	}

	top := contenders[0].Votes
	for _, c := range contenders[1:] {
		if c.Votes > top {
			top = c.Votes
		}
	}

	var tied []Contender
	for _, c := range contenders {
		if c.Votes == top {
			tied = append(tied, c)
		}
	}

	if len(tied) == 1 {
		return &Resolution{Winner: tied[0]}, nil
	}

	i, err := r.Pick(len(tied))
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Winner:       tied[i],
		TieDetected:  true,
		TiedEntities: tied,
		TieVotes:     top,
		Method:       MethodRandomLot,
		NumTied:      len(tied),
	}, nil
}

// Pick returns a uniform index in [0, n).
func (r *Resolver) Pick(n int) (int, error) {
	if n <= 1 {
		return 0, nil
	}
	v, err := rand.Int(r.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to draw lots: %w", err)
	}
	return int(v.Int64()), nil
}

// Notice renders a one-line explanation of a tie for display next to a
// result. It returns "" when no tie was detected.
func Notice(res *Resolution, system string) string {
	if res == nil || !res.TieDetected {
		return ""
	}

	names := make([]string, len(res.TiedEntities))
	for i, c := range res.TiedEntities {
		names[i] = displayName(c)
	}

	return fmt.Sprintf("Tie in %s: %d contenders (%s) received %s votes each. %s was chosen by random lot.",
		system, res.NumTied, strings.Join(names, ", "), humanize.Commaf(res.TieVotes), displayName(res.Winner))
}

func displayName(c Contender) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
