package gitignore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAll_PreservesOrder(t *testing.T) {
	rs := CompileLines([]string{"*.log", "!keep.log"})

	var queries []MatchQuery
	for i := 0; i < 100; i++ {
		queries = append(queries, MatchQuery{Path: fmt.Sprintf("dir%d/file%d.log", i, i)})
		queries = append(queries, MatchQuery{Path: fmt.Sprintf("dir%d/keep.log", i)})
	}

	for _, parallelism := range []int{0, 1, 3, 16, 1000} {
		t.Run(fmt.Sprintf("parallelism=%d", parallelism), func(t *testing.T) {
			results, err := EvaluateAll(context.Background(), NewEvaluator(Options{}), rs, queries, parallelism)
			require.NoError(t, err)
			require.Len(t, results, len(queries))
			for i, res := range results {
				assert.Equal(t, i%2 == 0, res.Ignored, queries[i].Path)
			}
		})
	}
}

func TestEvaluateAll_Empty(t *testing.T) {
	results, err := EvaluateAll(context.Background(), NewEvaluator(Options{}), Empty(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEvaluateAll_InvalidQuery(t *testing.T) {
	queries := []MatchQuery{{Path: "ok.txt"}, {Path: "../escape"}, {Path: "fine.txt"}}

	_, err := EvaluateAll(context.Background(), NewEvaluator(Options{}), Empty(), queries, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Contains(t, err.Error(), "query 1")
}

func TestEvaluateAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EvaluateAll(ctx, NewEvaluator(Options{}), Empty(), []MatchQuery{{Path: "a"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
