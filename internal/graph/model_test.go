package graph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_SubmitUpdates(t *testing.T) {
	m := NewModel()

	HeatUpdate{Heats: []Heat{{Variable: 1, Value: 0.5}, {Variable: 2, Value: 1}}}.Submit(m)
	WeightUpdate{Weights: []Weight{{Edge: NewEdge(2, 1), Weight: 3}}}.Submit(m)

	assert.Equal(t, float32(0.5), m.Heat(1))
	assert.Equal(t, float32(1), m.Heat(2))
	assert.Equal(t, float32(3), m.Weight(Edge{A: 1, B: 2}))
	assert.Equal(t, uint64(2), m.Version())

	HeatUpdate{Heats: []Heat{{Variable: 1, Value: 0}}}.Submit(m)
	WeightUpdate{Weights: []Weight{{Edge: NewEdge(1, 2), Weight: 0}}}.Submit(m)

	assert.Equal(t, 1, m.NodeCount())
	assert.Equal(t, 0, m.EdgeCount())
}

func TestModel_SerializeRoundTrip(t *testing.T) {
	m := NewModel()
	m.SubmitHeatUpdate(HeatUpdate{Heats: []Heat{{Variable: 3, Value: 0.25}, {Variable: 1, Value: 0.75}}})
	m.SubmitWeightUpdate(WeightUpdate{Weights: []Weight{
		{Edge: NewEdge(1, 3), Weight: 2},
		{Edge: NewEdge(-4, 1), Weight: 1.5},
	}})

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))
	// Trailing bytes belong to whatever comes next in a snapshot file.
	buf.WriteString("tail")

	restored := NewModel()
	require.NoError(t, restored.Deserialize(&buf))
	assert.Equal(t, "tail", buf.String())

	assert.Equal(t, float32(0.25), restored.Heat(3))
	assert.Equal(t, float32(0.75), restored.Heat(1))
	assert.Equal(t, float32(2), restored.Weight(Edge{A: 1, B: 3}))
	assert.Equal(t, float32(1.5), restored.Weight(Edge{A: -4, B: 1}))

	var again bytes.Buffer
	require.NoError(t, restored.Serialize(&again))
	var orig bytes.Buffer
	require.NoError(t, m.Serialize(&orig))
	assert.Equal(t, orig.Bytes(), again.Bytes())
}

func TestModel_DeserializeTruncated(t *testing.T) {
	m := NewModel()
	m.SubmitHeatUpdate(HeatUpdate{Heats: []Heat{{Variable: 1, Value: 1}}})

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))

	restored := NewModel()
	restored.SubmitHeatUpdate(HeatUpdate{Heats: []Heat{{Variable: 9, Value: 1}}})
	err := restored.Deserialize(bytes.NewReader(buf.Bytes()[:buf.Len()-2]))
	require.Error(t, err)
	assert.Equal(t, 0, restored.NodeCount())
}

func TestEdge_Normalized(t *testing.T) {
	assert.Equal(t, Edge{A: 1, B: 5}, NewEdge(5, 1))
	assert.Equal(t, -1, NewEdge(1, 2).Compare(NewEdge(1, 3)))
	assert.Equal(t, 1, NewEdge(2, 3).Compare(NewEdge(1, 9)))
}
