package gitignore

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Matcher is anything that can judge a query against a RuleSet.
// Both *Evaluator and *CachedEvaluator implement it.
type Matcher interface {
	Evaluate(rs *RuleSet, q MatchQuery) (MatchResult, error)
}

var (
	_ Matcher = (*Evaluator)(nil)
	_ Matcher = (*CachedEvaluator)(nil)
)

// EvaluateAll judges queries in parallel against one RuleSet snapshot.
// Results are returned in query order. The first invalid query cancels the
// batch and its error is returned. parallelism <= 0 uses runtime.NumCPU().
func EvaluateAll(ctx context.Context, m Matcher, rs *RuleSet, queries []MatchQuery, parallelism int) ([]MatchResult, error) {
	results := make([]MatchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(queries) {
		parallelism = len(queries)
	}
	chunk := (len(queries) + parallelism - 1) / parallelism

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(queries); start += chunk {
		end := min(start+chunk, len(queries))

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := m.Evaluate(rs, queries[i])
				if err != nil {
					return fmt.Errorf("query %d (%q): %w", i, queries[i].Path, err)
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
