package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"harshagw/bulletins/internal/query"
)

// Outcome pairs a parsed question with its result.
type Outcome struct {
	Query  *query.StructuredQuery
	Result Result
}

// Batch parses and executes independent questions with at most workers
// running at once. Outcomes keep the input order. Cancelling ctx stops
// questions that have not started yet.
func Batch(ctx context.Context, p *query.Parser, s *Searcher, questions []string, workers int) ([]Outcome, error) {
	out := make([]Outcome, len(questions))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, raw := range questions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			q := p.Parse(raw)
			out[i] = Outcome{Query: q, Result: s.Search(q)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
