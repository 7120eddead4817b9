package ingest

import (
	"satstream/internal/coordinator"
	"satstream/internal/graph"
	"satstream/internal/processing"
	"satstream/internal/storage"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_IntoCoordinator(t *testing.T) {
	ig, err := processing.NewInteractionGraph(1)
	require.NoError(t, err)
	coord, err := coordinator.New(coordinator.Config{
		TempDir:   t.TempDir(),
		SnapCount: 5,
		WAL:       storage.Options{NoSync: true},
	}, graph.NewModel(), ig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = coord.Close() })

	client := startServer(t, NewDispatcher(coord))
	ctx := testContext(t)

	stream, err := client.OpenStream(ctx, 7)
	require.NoError(t, err)
	updates := clauseUpdates(12)
	for _, u := range updates {
		require.NoError(t, stream.SendClauseUpdate(u))
	}
	accepted, err := stream.CloseAndRecv()
	require.NoError(t, err)
	require.Equal(t, uint64(12), accepted)
	require.Equal(t, int64(12), coord.TotalUpdateCount())

	n, err := coord.AdvanceVisualization(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, []int64{0, 12}, coord.SnapshotKeys())
	edges := ig.EdgeCount()

	require.NoError(t, coord.SeekToUpdate(ctx, 4))
	assert.Equal(t, int64(4), coord.CurrentUpdate())
	require.NoError(t, coord.SeekToUpdate(ctx, 12))
	assert.Equal(t, edges, ig.EdgeCount())
}
