package scheduler

import (
	"context"
	"testing"

	"matchsync/ingestion/internal/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedUsage returns one canned usage snapshot per Usage call
type scriptedUsage struct {
	counts []int
	idx    int
}

func (s *scriptedUsage) Usage() quota.Usage {
	u := quota.Usage{Count: s.counts[s.idx]}
	if s.idx < len(s.counts)-1 {
		s.idx++
	}
	return u
}

func TestMetered_CountsCallsMadeDuringRun(t *testing.T) {
	src := &scriptedUsage{counts: []int{10, 13}}

	run := metered(src, func(ctx context.Context) (RunStats, error) {
		return RunStats{RowsWritten: 5}, nil
	})

	stats, err := run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UpstreamCalls)
	assert.Equal(t, 5, stats.RowsWritten)
}

func TestMetered_WindowResetDoesNotGoNegative(t *testing.T) {
	// The daily window rolling over mid-run drops the counter below
	// the pre-run reading
	src := &scriptedUsage{counts: []int{7400, 2}}

	run := metered(src, func(ctx context.Context) (RunStats, error) {
		return RunStats{}, nil
	})

	stats, err := run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.UpstreamCalls, "A counter reset must not produce a negative call count")
}
