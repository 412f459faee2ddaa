// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CompareLimit bounds how many systems Compare calculates at once.
const CompareLimit = 4

// Comparison is one system's entry in a side-by-side comparison.
type Comparison struct {
	System System  `json:"system"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
	err    error
}

// Err returns the calculation error, if any.
func (c Comparison) Err() error { return c.err }

// Compare calculates every system over its own copy of e. A system that
// fails records its error; only cancellation of ctx fails the whole call.
func Compare(ctx context.Context, systems []System, e Election, p Params) ([]Comparison, error) {
	out := make([]Comparison, len(systems))
	if p.Random != nil {
		p.Random = &lockedReader{r: p.Random}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(CompareLimit)

	for i, sys := range systems {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Calculate(sys, e.Clone(), p)
			out[i] = Comparison{System: sys, Result: res, err: err}
			if err != nil {
				out[i].Error = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// lockedReader serialises reads from a caller-supplied random source.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}
