package processing

import (
	"context"
	"fmt"
	"io"
	"maps"
	"satstream/internal/graph"
	"satstream/internal/sat"
	"slices"
	"sync"
)

// Heatmap tracks how often each variable occurs among the most recently seen
// clauses. The window is a ring of fixed capacity.
type Heatmap struct {
	mu     sync.Mutex
	ring   []sat.Clause
	cursor int
	seen   int
	freq   map[int32]int
}

func NewHeatmap(size int) (*Heatmap, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heatmap size %d: %w", size, ErrInvalidSize)
	}
	return &Heatmap{
		ring: make([]sat.Clause, size),
		freq: make(map[int32]int),
	}, nil
}

func (h *Heatmap) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ring)
}

// Resize changes the window capacity and clears all state.
func (h *Heatmap) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("heatmap size %d: %w", size, ErrInvalidSize)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ring = make([]sat.Clause, size)
	h.clear()
	return nil
}

func (h *Heatmap) Process(_ context.Context, updates []sat.ClauseUpdate, _ graph.Graph) (graph.Update, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	touched := make(map[int32]struct{})
	for _, u := range updates {
		if h.seen >= len(h.ring) {
			h.ring[h.cursor].Variables(func(v int32) {
				h.freq[v]--
				if h.freq[v] <= 0 {
					delete(h.freq, v)
				}
				touched[v] = struct{}{}
			})
		}
		h.ring[h.cursor] = u.Clause
		u.Clause.Variables(func(v int32) {
			h.freq[v]++
		})
		h.cursor = (h.cursor + 1) % len(h.ring)
		h.seen = min(h.seen+1, len(h.ring))
	}

	for v := range h.freq {
		touched[v] = struct{}{}
	}
	vars := slices.Sorted(maps.Keys(touched))

	out := graph.HeatUpdate{Heats: make([]graph.Heat, 0, len(vars))}
	for _, v := range vars {
		var heat float32
		if n, ok := h.freq[v]; ok && h.seen > 0 {
			heat = float32(n) / float32(h.seen)
		}
		out.Heats = append(out.Heats, graph.Heat{Variable: v, Value: heat})
	}
	return out, nil
}

// Frequency is the number of windowed clause occurrences of variable v.
func (h *Heatmap) Frequency(v int32) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.freq[v]
}

// Serialize writes nothing: the window is rebuilt by processing after a restore.
func (h *Heatmap) Serialize(io.Writer) error {
	return nil
}

// Deserialize resets the heatmap and consumes no input.
func (h *Heatmap) Deserialize(io.Reader) error {
	h.Reset()
	return nil
}

func (h *Heatmap) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clear()
}

func (h *Heatmap) clear() {
	clear(h.ring)
	h.cursor = 0
	h.seen = 0
	h.freq = make(map[int32]int)
}
