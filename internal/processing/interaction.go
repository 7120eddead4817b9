package processing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"maps"
	"satstream/internal/graph"
	"satstream/internal/sat"
	"satstream/internal/serial"
	"slices"
	"sync"
)

// InteractionGraph weights pairs of variables that occur next to each other in
// a clause. The variables of a clause form a ring: v0-v1, v1-v2, ..., vn-v0.
type InteractionGraph struct {
	mu      sync.Mutex
	factor  float32
	weights map[graph.Edge]float32
}

func NewInteractionGraph(factor float32) (*InteractionGraph, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("weight factor %v: %w", factor, ErrInvalidSize)
	}
	return &InteractionGraph{
		factor:  factor,
		weights: make(map[graph.Edge]float32),
	}, nil
}

func (ig *InteractionGraph) Process(_ context.Context, updates []sat.ClauseUpdate, _ graph.Graph) (graph.Update, error) {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	touched := make(map[graph.Edge]struct{})
	for _, u := range updates {
		delta := ig.factor
		if u.Type == sat.UpdateRemove {
			delta = -delta
		}
		ringEdges(u.Clause, func(e graph.Edge) {
			w := ig.weights[e] + delta
			if w <= 0 {
				delete(ig.weights, e)
			} else {
				ig.weights[e] = w
			}
			touched[e] = struct{}{}
		})
	}

	edges := slices.SortedFunc(maps.Keys(touched), graph.Edge.Compare)
	out := graph.WeightUpdate{Weights: make([]graph.Weight, 0, len(edges))}
	for _, e := range edges {
		out.Weights = append(out.Weights, graph.Weight{Edge: e, Weight: ig.weights[e]})
	}
	return out, nil
}

func ringEdges(c sat.Clause, fn func(graph.Edge)) {
	n := c.Len()
	if n < 2 {
		return
	}
	steps := n
	if n == 2 {
		steps = 1
	}
	for i := range steps {
		a := sat.Variable(c.Literal(i))
		b := sat.Variable(c.Literal((i + 1) % n))
		if a == b {
			continue
		}
		fn(graph.NewEdge(a, b))
	}
}

func (ig *InteractionGraph) Weight(e graph.Edge) float32 {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	return ig.weights[e]
}

func (ig *InteractionGraph) EdgeCount() int {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	return len(ig.weights)
}

// Serialize writes the edge count followed by the edges in sorted order.
func (ig *InteractionGraph) Serialize(w io.Writer) error {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	bw := bufio.NewWriter(w)
	edges := slices.SortedFunc(maps.Keys(ig.weights), graph.Edge.Compare)
	if err := serial.WriteUvarint(bw, uint64(len(edges))); err != nil {
		return err
	}
	for _, e := range edges {
		if err := serial.WriteVarint(bw, int64(e.A)); err != nil {
			return err
		}
		if err := serial.WriteVarint(bw, int64(e.B)); err != nil {
			return err
		}
		if err := serial.WriteFloat32(bw, ig.weights[e]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (ig *InteractionGraph) Deserialize(r io.Reader) error {
	br := serial.ByteReader(r)

	ig.mu.Lock()
	defer ig.mu.Unlock()
	ig.weights = make(map[graph.Edge]float32)

	n, err := serial.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("interaction graph: %w", err)
	}
	weights := make(map[graph.Edge]float32, min(n, 1<<16))
	for range n {
		a, err := serial.ReadVarint(br)
		if err != nil {
			return fmt.Errorf("interaction graph: %w", err)
		}
		b, err := serial.ReadVarint(br)
		if err != nil {
			return fmt.Errorf("interaction graph: %w", err)
		}
		w, err := serial.ReadFloat32(br)
		if err != nil {
			return fmt.Errorf("interaction graph: %w", err)
		}
		weights[graph.NewEdge(int32(a), int32(b))] = w
	}
	ig.weights = weights
	return nil
}

func (ig *InteractionGraph) Reset() {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	ig.weights = make(map[graph.Edge]float32)
}
