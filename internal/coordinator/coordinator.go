package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"satstream/internal/configuration/properties"
	"satstream/internal/graph"
	"satstream/internal/metrics"
	"satstream/internal/processing"
	"satstream/internal/sat"
	"satstream/internal/storage"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.etcd.io/etcd/pkg/v3/wait"
)

// ChangeListener is called with the current update after the live state
// changed. It runs after all locks are released.
type ChangeListener func(currentUpdate int64)

// Coordinator owns the update log, the registered processors, the downstream
// graph and the snapshots taken of them.
//
// Locks are always acquired in the order snapshotMu, stateMu, processorMu.
type Coordinator struct {
	snapshotMu  sync.Mutex
	stateMu     sync.Mutex
	processorMu sync.Mutex

	dir       string
	log       *storage.UpdateLog
	graph     graph.Graph
	snapshots *snapshotStore
	snapCount int64
	// syncLog is set when the log does not sync on append. Snapshots then
	// sync it first so no snapshot covers updates that are not durable.
	syncLog bool

	processors    atomic.Pointer[processorList]
	currentUpdate atomic.Int64

	// stateChanges counts live state changes and drives WaitForUpdate.
	stateChanges atomic.Uint64
	waits        wait.WaitTime

	listenersMu sync.Mutex
	listeners   []ChangeListener

	closed atomic.Bool
}

type Config struct {
	// TempDir is the parent of the coordinator's private directory. Empty
	// means the system temp directory.
	TempDir string
	// SnapCount is the distance in updates after which an advance takes a
	// snapshot automatically. Zero disables automatic snapshots.
	SnapCount int64
	WAL       storage.Options
}

func NewConfigFromProperties(cfg *properties.CoordinatorConfigProperties) Config {
	return Config{
		TempDir:   cfg.TempDir,
		SnapCount: cfg.SnapCount,
		WAL: storage.Options{
			NoSync:      cfg.Wal.NoSync,
			SegmentSize: cfg.Wal.SegmentSize,
		},
	}
}

// New creates the coordinator's private directory and takes the initial
// snapshot at update 0. The given processors are part of that snapshot.
func New(cfg Config, g graph.Graph, processors ...processing.Processor) (*Coordinator, error) {
	dir, err := os.MkdirTemp(cfg.TempDir, "satstream-")
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w: %w", ErrSnapshotIO, err)
	}

	log, err := storage.OpenUpdateLog(filepath.Join(dir, "log"), cfg.WAL)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	snapshots, err := newSnapshotStore(filepath.Join(dir, "snapshots"))
	if err != nil {
		_ = log.Close()
		_ = os.RemoveAll(dir)
		return nil, err
	}

	c := &Coordinator{
		dir:       dir,
		log:       log,
		graph:     g,
		snapshots: snapshots,
		snapCount: cfg.SnapCount,
		syncLog:   cfg.WAL.NoSync,
		waits:     wait.NewTimeList(),
	}
	c.processors.Store(&processorList{items: slices.Clone(processors)})

	c.snapshotMu.Lock()
	err = c.takeSnapshotLocked()
	c.snapshotMu.Unlock()
	if err != nil {
		_ = log.Close()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}

	slog.Info("coordinator created",
		"dir", dir,
		"processors", len(processors),
		"snapCount", cfg.SnapCount,
		"noSync", cfg.WAL.NoSync,
	)
	return c, nil
}

func (c *Coordinator) Closed() bool {
	return c.closed.Load()
}

func (c *Coordinator) Dir() string {
	return c.dir
}

// CurrentUpdate is the number of updates applied to the live state.
func (c *Coordinator) CurrentUpdate() int64 {
	return c.currentUpdate.Load()
}

// TotalUpdateCount is the number of updates in the log.
func (c *Coordinator) TotalUpdateCount() int64 {
	return c.log.Size()
}

func (c *Coordinator) SnapshotKeys() []int64 {
	c.snapshotMu.Lock()
	defer c.snapshotMu.Unlock()
	return c.snapshots.keys()
}

// AddClauseUpdate appends u to the log. It never waits for playback.
func (c *Coordinator) AddClauseUpdate(u sat.ClauseUpdate) error {
	return c.AddClauseUpdates([]sat.ClauseUpdate{u})
}

func (c *Coordinator) AddClauseUpdates(updates []sat.ClauseUpdate) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.log.AppendBatch(updates)
}

// AddProcessor registers p after all existing processors. p keeps whatever
// state it has; the next snapshot records the new processor set.
func (c *Coordinator) AddProcessor(p processing.Processor) {
	c.processorMu.Lock()
	defer c.processorMu.Unlock()
	list := c.processors.Load().with(p)
	c.processors.Store(list)
	slog.Debug("processor added", "type", fmt.Sprintf("%T", p), "processors", len(list.items))
}

// Processors returns a copy of the registered processors in processing order.
func (c *Coordinator) Processors() []processing.Processor {
	return slices.Clone(c.processors.Load().items)
}

func (c *Coordinator) RegisterChangeListener(l ChangeListener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// AdvanceVisualization applies up to n further updates from the log to the
// processors and the graph and returns how many were applied. Calls made with
// the context handed to a processor are ignored and return 0.
func (c *Coordinator) AdvanceVisualization(ctx context.Context, n int64) (int64, error) {
	if stateHeld, _ := c.heldLocks(ctx); stateHeld {
		metrics.ReentrantCallsTotal.WithLabelValues("advance").Inc()
		slog.Debug("ignoring reentrant advance", "n", n)
		return 0, nil
	}
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, nil
	}

	consumed, err := c.advance(ctx, n)
	if consumed > 0 {
		c.notifyChange()
	}
	return consumed, err
}

func (c *Coordinator) advance(ctx context.Context, n int64) (int64, error) {
	c.snapshotMu.Lock()
	defer c.snapshotMu.Unlock()
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	consumed, err := c.advanceLocked(c.withLocks(ctx, true, true), n)
	if err != nil || consumed == 0 {
		return consumed, err
	}

	if err := c.maybeTakeSnapshotLocked(); err != nil {
		slog.Warn("automatic snapshot failed", "update", c.currentUpdate.Load(), "error", err)
	}
	return consumed, nil
}

// advanceLocked requires the snapshot and state locks. ctx must carry the
// token for both.
func (c *Coordinator) advanceLocked(ctx context.Context, n int64) (int64, error) {
	start := time.Now()

	current := c.currentUpdate.Load()
	count := min(n, c.log.Size()-current)
	if count <= 0 {
		return 0, nil
	}

	updates, err := c.log.Read(current, count)
	if err != nil {
		return 0, fmt.Errorf("advance from %d: %w", current, err)
	}

	for i, p := range c.processors.Load().items {
		delta, err := p.Process(ctx, updates, c.graph)
		if err != nil {
			return 0, fmt.Errorf("processor %d (%T) at update %d: %w", i, p, current, err)
		}
		if delta != nil {
			delta.Submit(c.graph)
		}
	}

	c.setCurrentLocked(current + count)

	metrics.AdvanceTotal.Inc()
	metrics.AdvanceBatchSize.Observe(float64(count))
	metrics.AdvanceDuration.Observe(time.Since(start).Seconds())

	slog.Debug("advanced", "from", current, "to", current+count)
	return count, nil
}

// SeekToUpdate sets the live state to the result of applying exactly index
// updates from the start. It restores the closest snapshot at or before index
// and replays the rest. Calls made with the context handed to a processor are
// ignored.
func (c *Coordinator) SeekToUpdate(ctx context.Context, index int64) error {
	if index < 0 {
		return fmt.Errorf("seek to %d: %w", index, ErrInvalidSeekIndex)
	}
	if stateHeld, snapshotHeld := c.heldLocks(ctx); stateHeld || snapshotHeld {
		metrics.ReentrantCallsTotal.WithLabelValues("seek").Inc()
		slog.Debug("ignoring reentrant seek", "index", index)
		return nil
	}
	if c.closed.Load() {
		return ErrClosed
	}
	if total := c.log.Size(); index > total {
		return fmt.Errorf("seek to %d of %d: %w", index, total, storage.ErrOutOfRange)
	}

	restored, err := c.seek(ctx, index)
	if restored {
		c.notifyChange()
	}
	return err
}

func (c *Coordinator) seek(ctx context.Context, index int64) (bool, error) {
	start := time.Now()

	c.snapshotMu.Lock()
	defer c.snapshotMu.Unlock()

	snap, ok := c.snapshots.floor(index)
	if !ok {
		return false, fmt.Errorf("seek to %d: %w", index, ErrNoSnapshot)
	}

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if err := c.restoreLocked(snap); err != nil {
		return false, fmt.Errorf("seek to %d: %w", index, err)
	}

	remaining := index - snap.key
	replayed, err := c.advanceLocked(c.withLocks(ctx, true, true), remaining)
	if err != nil {
		return true, fmt.Errorf("seek to %d: replay: %w", index, err)
	}
	if replayed != remaining {
		return true, fmt.Errorf("seek to %d: replayed %d of %d: %w", index, replayed, remaining, storage.ErrOutOfRange)
	}

	metrics.SeekTotal.Inc()
	metrics.SeekReplayed.Observe(float64(replayed))
	metrics.SeekDuration.Observe(time.Since(start).Seconds())

	slog.Debug("seek complete", "index", index, "snapshot", snap.key, "replayed", replayed)
	return true, nil
}

// setCurrentLocked requires the state lock.
func (c *Coordinator) setCurrentLocked(v int64) {
	c.currentUpdate.Store(v)
	metrics.CurrentUpdate.Set(float64(v))
	c.waits.Trigger(c.stateChanges.Add(1))
}

// WaitForUpdate blocks until CurrentUpdate is at least n or ctx is done.
func (c *Coordinator) WaitForUpdate(ctx context.Context, n int64) error {
	for {
		changes := c.stateChanges.Load()
		if c.currentUpdate.Load() >= n {
			return nil
		}
		if c.closed.Load() {
			return ErrClosed
		}
		select {
		case <-c.waits.Wait(changes + 1):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) notifyChange() {
	c.listenersMu.Lock()
	listeners := append([]ChangeListener(nil), c.listeners...)
	c.listenersMu.Unlock()

	current := c.currentUpdate.Load()
	for _, l := range listeners {
		l(current)
	}
}

// Close waits for running operations, closes the log and removes the
// coordinator's directory.
func (c *Coordinator) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.snapshotMu.Lock()
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	defer c.snapshotMu.Unlock()

	// Wake waiters so they observe the close.
	c.waits.Trigger(c.stateChanges.Add(1))

	var errs []error
	if err := c.log.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := os.RemoveAll(c.dir); err != nil {
		errs = append(errs, fmt.Errorf("remove %s: %w: %w", c.dir, ErrSnapshotIO, err))
	}

	slog.Info("coordinator closed", "dir", c.dir, "update", c.currentUpdate.Load())
	return errors.Join(errs...)
}
