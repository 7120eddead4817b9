package graph

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"satstream/internal/serial"
	"slices"
	"sync"
)

// Model is the in-memory Graph: heat per variable and weight per edge.
type Model struct {
	mu      sync.RWMutex
	heat    map[int32]float32
	weights map[Edge]float32
	version uint64
}

func NewModel() *Model {
	return &Model{
		heat:    make(map[int32]float32),
		weights: make(map[Edge]float32),
	}
}

func (m *Model) SubmitHeatUpdate(u HeatUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range u.Heats {
		if h.Value == 0 {
			delete(m.heat, h.Variable)
			continue
		}
		m.heat[h.Variable] = h.Value
	}
	m.version++
}

func (m *Model) SubmitWeightUpdate(u WeightUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range u.Weights {
		if w.Weight <= 0 {
			delete(m.weights, w.Edge)
			continue
		}
		m.weights[w.Edge] = w.Weight
	}
	m.version++
}

func (m *Model) Heat(v int32) float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.heat[v]
}

func (m *Model) Weight(e Edge) float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.weights[e]
}

func (m *Model) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.heat)
}

func (m *Model) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.weights)
}

// Version increases with every submitted update and every restore.
func (m *Model) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Serialize writes heats then weights, each as a count followed by entries
// sorted by key, so equal models produce equal bytes.
func (m *Model) Serialize(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bw := bufio.NewWriter(w)

	vars := slices.Sorted(maps.Keys(m.heat))
	if err := serial.WriteUvarint(bw, uint64(len(vars))); err != nil {
		return err
	}
	for _, v := range vars {
		if err := serial.WriteVarint(bw, int64(v)); err != nil {
			return err
		}
		if err := serial.WriteFloat32(bw, m.heat[v]); err != nil {
			return err
		}
	}

	edges := slices.SortedFunc(maps.Keys(m.weights), Edge.Compare)
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
		if err := serial.WriteFloat32(bw, m.weights[e]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Deserialize replaces the model state. On error the model is left empty.
func (m *Model) Deserialize(r io.Reader) error {
	br := serial.ByteReader(r)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.heat = make(map[int32]float32)
	m.weights = make(map[Edge]float32)
	m.version++

	heat, weights, err := readModel(br)
	if err != nil {
		return fmt.Errorf("graph model: %w", err)
	}
	m.heat = heat
	m.weights = weights
	return nil
}

func readModel(br io.ByteReader) (map[int32]float32, map[Edge]float32, error) {
	n, err := serial.ReadUvarint(br)
	if err != nil {
		return nil, nil, err
	}
	heat := make(map[int32]float32, min(n, 1<<16))
	for range n {
		v, err := serial.ReadVarint(br)
		if err != nil {
			return nil, nil, err
		}
		f, err := serial.ReadFloat32(br)
		if err != nil {
			return nil, nil, err
		}
		heat[int32(v)] = f
	}

	n, err = serial.ReadUvarint(br)
	if err != nil {
		return nil, nil, err
	}
	weights := make(map[Edge]float32, min(n, 1<<16))
	for range n {
		a, err := serial.ReadVarint(br)
		if err != nil {
			return nil, nil, err
		}
		b, err := serial.ReadVarint(br)
		if err != nil {
			return nil, nil, err
		}
		f, err := serial.ReadFloat32(br)
		if err != nil {
			return nil, nil, err
		}
		weights[NewEdge(int32(a), int32(b))] = f
	}
	return heat, weights, nil
}
