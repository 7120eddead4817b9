package storage

import (
	"satstream/internal/sat"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T, dir string) *UpdateLog {
	t.Helper()
	l, err := OpenUpdateLog(dir, Options{NoSync: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func sampleUpdates(n int) []sat.ClauseUpdate {
	out := make([]sat.ClauseUpdate, n)
	for i := range out {
		c := sat.MustClause(int32(i+1), -int32(i+2))
		if i%2 == 0 {
			out[i] = sat.Add(c)
		} else {
			out[i] = sat.Remove(c)
		}
	}
	return out
}

func requireUpdatesEqual(t *testing.T, want, got []sat.ClauseUpdate) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "update %d: want %v %s, got %v %s",
			i, want[i].Type, want[i].Clause, got[i].Type, got[i].Clause)
	}
}

func TestUpdateLog_AppendRead(t *testing.T) {
	l := openTestLog(t, t.TempDir())
	updates := sampleUpdates(5)

	require.NoError(t, l.Append(updates[0]))
	require.NoError(t, l.AppendBatch(updates[1:]))
	require.NoError(t, l.AppendBatch(nil))
	assert.Equal(t, int64(5), l.Size())

	got, err := l.Read(0, 5)
	require.NoError(t, err)
	requireUpdatesEqual(t, updates, got)

	got, err = l.Read(2, 2)
	require.NoError(t, err)
	requireUpdatesEqual(t, updates[2:4], got)

	got, err = l.Read(5, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateLog_ReadOutOfRange(t *testing.T) {
	l := openTestLog(t, t.TempDir())
	require.NoError(t, l.AppendBatch(sampleUpdates(3)))

	_, err := l.Read(2, 2)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = l.Read(-1, 1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = l.Read(0, -1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestUpdateLog_Reopen(t *testing.T) {
	dir := t.TempDir()
	updates := sampleUpdates(4)

	l, err := OpenUpdateLog(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, l.AppendBatch(updates[:3]))
	require.NoError(t, l.Sync())
	require.NoError(t, l.Close())

	reopened := openTestLog(t, dir)
	assert.Equal(t, int64(3), reopened.Size())
	require.NoError(t, reopened.Append(updates[3]))

	got, err := reopened.Read(0, 4)
	require.NoError(t, err)
	requireUpdatesEqual(t, updates, got)
}

func TestUpdateLog_Closed(t *testing.T) {
	l, err := OpenUpdateLog(t.TempDir(), Options{NoSync: true})
	require.NoError(t, err)
	require.NoError(t, l.Append(sampleUpdates(1)[0]))

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	require.ErrorIs(t, l.Append(sampleUpdates(1)[0]), ErrClosed)
	_, err = l.Read(0, 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestUpdateLog_ConcurrentAppendAndRead(t *testing.T) {
	l := openTestLog(t, t.TempDir())
	updates := sampleUpdates(100)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < len(updates); i += 4 {
			assert.NoError(t, l.AppendBatch(updates[i:i+4]))
		}
	}()
	go func() {
		defer wg.Done()
		for l.Size() < int64(len(updates)) {
			size := l.Size()
			got, err := l.Read(0, size)
			if !assert.NoError(t, err) {
				return
			}
			requireUpdatesEqual(t, updates[:size], got)
		}
	}()
	wg.Wait()

	got, err := l.Read(0, l.Size())
	require.NoError(t, err)
	requireUpdatesEqual(t, updates, got)
}
