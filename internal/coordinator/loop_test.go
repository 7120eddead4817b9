package coordinator

import (
	"context"
	"math/rand/v2"
	"satstream/internal/processing"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCoordinator_RunPlayback(t *testing.T) {
	p := newTraceProcessor()
	c, _ := newTestCoordinator(t, 0, p)
	updates := testUpdates(10)
	require.NoError(t, c.AddClauseUpdates(updates))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunPlayback(ctx, time.Millisecond, 3)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, c.WaitForUpdate(waitCtx, 10))

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, firstLiterals(updates), p.Trace())
}

func TestCoordinator_RunPlayback_Disabled(t *testing.T) {
	c, _ := newTestCoordinator(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.RunPlayback(ctx, 0, 10))
}

func TestCoordinator_ConcurrentOperations(t *testing.T) {
	const total = 200
	updates := testUpdates(total)

	baseIG, err := processing.NewInteractionGraph(1)
	require.NoError(t, err)
	base, _ := newTestCoordinator(t, 0, baseIG)
	require.NoError(t, base.AddClauseUpdates(updates))
	_, err = base.AdvanceVisualization(context.Background(), total)
	require.NoError(t, err)

	ig, err := processing.NewInteractionGraph(1)
	require.NoError(t, err)
	c, _ := newTestCoordinator(t, 16, ig)

	var seeksDone atomic.Bool
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		for i := 0; i < total; i += 10 {
			if err := c.AddClauseUpdates(updates[i : i+10]); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		for ctx.Err() == nil && (!seeksDone.Load() || c.CurrentUpdate() < total) {
			if _, err := c.AdvanceVisualization(ctx, 5); err != nil {
				return err
			}
		}
		return ctx.Err()
	})

	g.Go(func() error {
		defer seeksDone.Store(true)
		rng := rand.New(rand.NewPCG(1, 2))
		for range 50 {
			target := rng.Int64N(c.TotalUpdateCount() + 1)
			if err := c.SeekToUpdate(ctx, target); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		for range 20 {
			if err := c.TakeSnapshot(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, g.Wait())
	require.Equal(t, int64(total), c.CurrentUpdate())
	assert.Equal(t, serialized(t, baseIG), serialized(t, ig))

	require.NoError(t, c.SeekToUpdate(context.Background(), total/2))
	_, err = c.AdvanceVisualization(context.Background(), total)
	require.NoError(t, err)
	assert.Equal(t, serialized(t, baseIG), serialized(t, ig))
}
