package storage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"satstream/internal/metrics"
	"satstream/internal/sat"
	"satstream/internal/serial"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/wal"
)

type Options struct {
	NoSync      bool
	SegmentSize int
}

// UpdateLog is the append-only, 0-indexed sequence of clause updates. Entry i is
// stored at wal index i+1. One writer may append while readers read ranges they
// have already observed through Size.
type UpdateLog struct {
	appendMu sync.Mutex
	dir      string
	log      *wal.Log
	size     atomic.Int64
	closed   atomic.Bool
	codec    serial.ClauseUpdateSerializer
}

func OpenUpdateLog(dir string, opts Options) (*UpdateLog, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w: %w", dir, ErrStorageIO, err)
	}

	walOpts := *wal.DefaultOptions
	walOpts.NoSync = opts.NoSync
	if opts.SegmentSize > 0 {
		walOpts.SegmentSize = opts.SegmentSize
	}
	log, err := wal.Open(dir, &walOpts)
	if err != nil {
		return nil, fmt.Errorf("wal.Open: %w: %w", ErrStorageIO, err)
	}

	last, err := log.LastIndex()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("wal.LastIndex: %w: %w", ErrStorageIO, err)
	}

	l := &UpdateLog{dir: dir, log: log}
	l.size.Store(int64(last))
	metrics.UpdateLogSize.Set(float64(last))

	slog.Info("opened update log", "dir", dir, "size", last, "noSync", opts.NoSync)
	return l, nil
}

func (l *UpdateLog) Size() int64 {
	return l.size.Load()
}

func (l *UpdateLog) Append(u sat.ClauseUpdate) error {
	return l.AppendBatch([]sat.ClauseUpdate{u})
}

// AppendBatch appends all updates with one wal write. The new size is published
// only after the write succeeded.
func (l *UpdateLog) AppendBatch(updates []sat.ClauseUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if l.closed.Load() {
		return ErrClosed
	}

	start := time.Now()

	l.appendMu.Lock()
	defer l.appendMu.Unlock()

	next := l.size.Load()
	var batch wal.Batch
	var buf bytes.Buffer
	for i, u := range updates {
		buf.Reset()
		if err := l.codec.Serialize(u, &buf); err != nil {
			return fmt.Errorf("encode update %d: %w", next+int64(i), err)
		}
		batch.Write(uint64(next+int64(i))+1, bytes.Clone(buf.Bytes()))
	}
	if err := l.log.WriteBatch(&batch); err != nil {
		return fmt.Errorf("wal.WriteBatch(%d): %w: %w", next+1, ErrStorageIO, err)
	}

	size := l.size.Add(int64(len(updates)))

	metrics.UpdateLogAppendsTotal.Add(float64(len(updates)))
	metrics.UpdateLogAppendDuration.Observe(time.Since(start).Seconds())
	metrics.UpdateLogSize.Set(float64(size))
	return nil
}

// Read returns exactly count updates starting at offset.
func (l *UpdateLog) Read(offset, count int64) ([]sat.ClauseUpdate, error) {
	size := l.size.Load()
	if offset < 0 || count < 0 || offset+count > size {
		return nil, fmt.Errorf("read [%d, %d) of %d: %w", offset, offset+count, size, ErrOutOfRange)
	}
	if l.closed.Load() {
		return nil, ErrClosed
	}

	updates := make([]sat.ClauseUpdate, 0, count)
	for i := offset; i < offset+count; i++ {
		data, err := l.log.Read(uint64(i) + 1)
		if err != nil {
			if errors.Is(err, wal.ErrClosed) {
				return nil, ErrClosed
			}
			return nil, fmt.Errorf("wal.Read(%d): %w: %w", i+1, ErrStorageIO, err)
		}
		obj, n, err := serial.Decode(l.codec, data)
		if err != nil {
			return nil, fmt.Errorf("decode update %d: %w", i, err)
		}
		if n != len(data) {
			return nil, fmt.Errorf("decode update %d: %w: %d trailing bytes", i, serial.ErrSerialization, len(data)-n)
		}
		updates = append(updates, obj.(sat.ClauseUpdate))
	}
	return updates, nil
}

func (l *UpdateLog) Sync() error {
	if err := l.log.Sync(); err != nil {
		return fmt.Errorf("wal.Sync: %w: %w", ErrStorageIO, err)
	}
	return nil
}

func (l *UpdateLog) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.appendMu.Lock()
	defer l.appendMu.Unlock()
	if err := l.log.Close(); err != nil {
		return fmt.Errorf("wal.Close: %w: %w", ErrStorageIO, err)
	}
	slog.Debug("closed update log", "dir", l.dir, "size", l.size.Load())
	return nil
}
