package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_Floor(t *testing.T) {
	s, err := newSnapshotStore(t.TempDir())
	require.NoError(t, err)

	_, ok := s.floor(5)
	assert.False(t, ok)

	for _, k := range []int64{10, 0, 5} {
		s.put(snapshot{key: k, path: s.path(k)})
	}
	assert.Equal(t, []int64{0, 5, 10}, s.keys())

	tests := []struct {
		target int64
		want   int64
	}{
		{0, 0}, {4, 0}, {5, 5}, {9, 5}, {10, 10}, {1000, 10},
	}
	for _, tt := range tests {
		snap, ok := s.floor(tt.target)
		require.True(t, ok)
		assert.Equal(t, tt.want, snap.key, "floor(%d)", tt.target)
	}

	_, ok = s.floor(-1)
	assert.False(t, ok)

	last, ok := s.last()
	require.True(t, ok)
	assert.Equal(t, int64(10), last.key)
}

func TestSnapshotStore_PutReplaces(t *testing.T) {
	s, err := newSnapshotStore(t.TempDir())
	require.NoError(t, err)

	first := &processorList{}
	second := &processorList{}
	s.put(snapshot{key: 3, processors: first})
	s.put(snapshot{key: 3, processors: second})

	require.Len(t, s.entries, 1)
	assert.Same(t, second, s.entries[0].processors)
}

func TestProcessorList_WithCopies(t *testing.T) {
	a := newTraceProcessor()
	b := newTraceProcessor()

	base := (&processorList{}).with(a)
	next := base.with(b)

	assert.Len(t, base.items, 1)
	assert.Len(t, next.items, 2)
	assert.True(t, next.contains(a))
	assert.True(t, next.contains(b))
	assert.False(t, base.contains(b))
}
