package graph

import (
	"cmp"
	"io"
)

// Graph is the downstream visualization state fed by processors. Its state is
// captured in snapshots next to the processor states, so Deserialize must
// consume exactly the bytes Serialize produced.
type Graph interface {
	SubmitHeatUpdate(u HeatUpdate)
	SubmitWeightUpdate(u WeightUpdate)
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

// Update is a delta produced by a processor for one batch.
type Update interface {
	Submit(g Graph)
}

type Heat struct {
	Variable int32
	Value    float32
}

// HeatUpdate sets the heat of every listed variable.
type HeatUpdate struct {
	Heats []Heat
}

func (u HeatUpdate) Submit(g Graph) {
	g.SubmitHeatUpdate(u)
}

// Edge is an undirected edge with A < B.
type Edge struct {
	A, B int32
}

func NewEdge(a, b int32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

func (e Edge) Compare(o Edge) int {
	return cmp.Or(cmp.Compare(e.A, o.A), cmp.Compare(e.B, o.B))
}

type Weight struct {
	Edge   Edge
	Weight float32
}

// WeightUpdate sets the weight of every listed edge; a weight of zero removes it.
type WeightUpdate struct {
	Weights []Weight
}

func (u WeightUpdate) Submit(g Graph) {
	g.SubmitWeightUpdate(u)
}
