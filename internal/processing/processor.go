package processing

import (
	"context"
	"errors"
	"io"
	"satstream/internal/graph"
	"satstream/internal/sat"
)

var ErrInvalidSize = errors.New("size must be positive")

// Processor turns batches of clause updates into graph deltas. Given the same
// prior state and the same batch it must return the same delta.
//
// Serialize and Deserialize are used back to back inside one snapshot file,
// so Deserialize must consume exactly the bytes Serialize wrote.
type Processor interface {
	// Process is called with the context of the operation that drives it.
	// Coordinator calls made with that context are ignored.
	Process(ctx context.Context, updates []sat.ClauseUpdate, g graph.Graph) (graph.Update, error)
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
	Reset()
}
