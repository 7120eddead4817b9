package coordinator

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"satstream/internal/graph"
	"satstream/internal/metrics"
	"satstream/internal/processing"
	"slices"
	"time"
)

// processorList is an immutable ordered set of processors. A new list is
// published whenever the set changes, so pointer equality tells whether two
// snapshots recorded the same set.
type processorList struct {
	items []processing.Processor
}

func (l *processorList) with(p processing.Processor) *processorList {
	items := make([]processing.Processor, 0, len(l.items)+1)
	items = append(items, l.items...)
	return &processorList{items: append(items, p)}
}

func (l *processorList) contains(p processing.Processor) bool {
	return slices.Contains(l.items, p)
}

type snapshot struct {
	key        int64
	path       string
	processors *processorList
}

// snapshotStore is ordered by key. It is guarded by the coordinator's
// snapshot lock.
type snapshotStore struct {
	dir     string
	entries []snapshot
}

func newSnapshotStore(dir string) (*snapshotStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w: %w", dir, ErrSnapshotIO, err)
	}
	return &snapshotStore{dir: dir}, nil
}

func (s *snapshotStore) search(key int64) (int, bool) {
	return slices.BinarySearchFunc(s.entries, key, func(e snapshot, k int64) int {
		return cmp.Compare(e.key, k)
	})
}

// floor returns the snapshot with the greatest key not exceeding key.
func (s *snapshotStore) floor(key int64) (snapshot, bool) {
	i, found := s.search(key)
	if found {
		return s.entries[i], true
	}
	if i == 0 {
		return snapshot{}, false
	}
	return s.entries[i-1], true
}

func (s *snapshotStore) last() (snapshot, bool) {
	if len(s.entries) == 0 {
		return snapshot{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *snapshotStore) put(snap snapshot) {
	i, found := s.search(snap.key)
	if found {
		s.entries[i] = snap
		return
	}
	s.entries = slices.Insert(s.entries, i, snap)
}

func (s *snapshotStore) keys() []int64 {
	keys := make([]int64, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

func (s *snapshotStore) path(key int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%020d.snap", key))
}

// TakeSnapshot records the current processor and graph state at the current
// update. Calls made while the snapshot lock is held by ctx are ignored.
func (c *Coordinator) TakeSnapshot(ctx context.Context) error {
	if _, snapshotHeld := c.heldLocks(ctx); snapshotHeld {
		metrics.ReentrantCallsTotal.WithLabelValues("snapshot").Inc()
		slog.Debug("ignoring reentrant snapshot")
		return nil
	}
	if c.closed.Load() {
		return ErrClosed
	}

	c.snapshotMu.Lock()
	defer c.snapshotMu.Unlock()
	return c.takeSnapshotLocked()
}

func (c *Coordinator) maybeTakeSnapshotLocked() error {
	if c.snapCount <= 0 {
		return nil
	}
	current := c.currentUpdate.Load()
	floor, ok := c.snapshots.floor(current)
	if ok && current-floor.key < c.snapCount {
		return nil
	}
	slog.Debug("snapshot threshold reached",
		"current", current,
		"floor", floor.key,
		"snapCount", c.snapCount,
	)
	return c.takeSnapshotLocked()
}

// takeSnapshotLocked requires the snapshot lock. The file is complete and
// synced before the entry is published.
func (c *Coordinator) takeSnapshotLocked() error {
	start := time.Now()

	c.processorMu.Lock()
	defer c.processorMu.Unlock()

	key := c.currentUpdate.Load()
	list := c.processors.Load()
	path := c.snapshots.path(key)

	if c.syncLog {
		if err := c.log.Sync(); err != nil {
			return fmt.Errorf("snapshot at %d: %w", key, err)
		}
	}

	size, err := c.writeSnapshotFile(path, list)
	if err != nil {
		return fmt.Errorf("snapshot at %d: %w", key, err)
	}

	reused := false
	if prev, ok := c.snapshots.last(); ok {
		reused = prev.processors == list
	}
	c.snapshots.put(snapshot{key: key, path: path, processors: list})

	metrics.SnapshotsTotal.Inc()
	metrics.SnapshotSize.Set(float64(size))
	metrics.SnapshotDuration.Observe(time.Since(start).Seconds())

	slog.Info("took snapshot",
		"update", key,
		"processors", len(list.items),
		"reusedProcessorList", reused,
		"bytes", size,
	)
	return nil
}

func (c *Coordinator) writeSnapshotFile(path string, list *processorList) (int64, error) {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w: %w", tmp, ErrSnapshotIO, err)
	}

	size, err := writeSnapshotState(f, list, c.graph)
	if err == nil {
		err = f.Sync()
		if err != nil {
			err = fmt.Errorf("sync %s: %w: %w", tmp, ErrSnapshotIO, err)
		}
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w: %w", tmp, ErrSnapshotIO, cerr)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w: %w", tmp, ErrSnapshotIO, err)
	}
	return size, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func writeSnapshotState(w io.Writer, list *processorList, g graph.Graph) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	for i, p := range list.items {
		if err := p.Serialize(bw); err != nil {
			return 0, fmt.Errorf("serialize processor %d (%T): %w", i, p, err)
		}
	}
	if err := g.Serialize(bw); err != nil {
		return 0, fmt.Errorf("serialize graph: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush: %w: %w", ErrSnapshotIO, err)
	}
	return cw.n, nil
}

// restoreLocked loads snap into the live state. It requires the snapshot and
// state locks. Processors registered after snap was taken are reset and kept
// after the snapshot's processors.
func (c *Coordinator) restoreLocked(snap snapshot) error {
	f, err := os.Open(snap.path)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", snap.path, ErrSnapshotIO, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)

	c.processorMu.Lock()
	defer c.processorMu.Unlock()

	for i, p := range snap.processors.items {
		if err := p.Deserialize(br); err != nil {
			return fmt.Errorf("restore processor %d (%T) from snapshot %d: %w", i, p, snap.key, err)
		}
	}
	if err := c.graph.Deserialize(br); err != nil {
		return fmt.Errorf("restore graph from snapshot %d: %w", snap.key, err)
	}
	switch _, err := br.ReadByte(); {
	case err == nil:
		return fmt.Errorf("snapshot %d: %w: trailing data", snap.key, ErrSnapshotIO)
	case !errors.Is(err, io.EOF):
		return fmt.Errorf("read %s: %w: %w", snap.path, ErrSnapshotIO, err)
	}

	live := c.processors.Load()
	var late []processing.Processor
	for _, p := range live.items {
		if !snap.processors.contains(p) {
			p.Reset()
			late = append(late, p)
		}
	}

	next := snap.processors
	if len(late) > 0 {
		next = &processorList{items: append(slices.Clone(snap.processors.items), late...)}
	}
	c.processors.Store(next)

	c.setCurrentLocked(snap.key)

	slog.Debug("restored snapshot",
		"update", snap.key,
		"restored", len(snap.processors.items),
		"reset", len(late),
	)
	return nil
}
