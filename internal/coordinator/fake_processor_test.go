package coordinator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"satstream/internal/graph"
	"satstream/internal/sat"
	"satstream/internal/serial"
	"slices"
	"sync"
)

// traceProcessor remembers the first literal of every update it processed.
// Its whole state is serialized, so restores are exact.
type traceProcessor struct {
	mu        sync.Mutex
	trace     []int32
	resets    int
	restores  []int
	onProcess func(ctx context.Context)
	failAt    int

	failSerialize   bool
	failDeserialize bool
}

func newTraceProcessor() *traceProcessor {
	return &traceProcessor{failAt: -1}
}

var errProcessorFailed = errors.New("processor failed")

func (p *traceProcessor) Process(ctx context.Context, updates []sat.ClauseUpdate, _ graph.Graph) (graph.Update, error) {
	if p.onProcess != nil {
		p.onProcess(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAt >= 0 && len(p.trace)+len(updates) > p.failAt {
		return nil, errProcessorFailed
	}
	heats := make([]graph.Heat, 0, len(updates))
	for _, u := range updates {
		lit := u.Clause.Literal(0)
		p.trace = append(p.trace, lit)
		heats = append(heats, graph.Heat{Variable: sat.Variable(lit), Value: float32(len(p.trace))})
	}
	return graph.HeatUpdate{Heats: heats}, nil
}

func (p *traceProcessor) Serialize(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSerialize {
		return errProcessorFailed
	}
	bw := bufio.NewWriter(w)
	if err := serial.WriteUvarint(bw, uint64(len(p.trace))); err != nil {
		return err
	}
	for _, lit := range p.trace {
		if err := serial.WriteVarint(bw, int64(lit)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (p *traceProcessor) Deserialize(r io.Reader) error {
	if p.failDeserialize {
		return errProcessorFailed
	}
	br := serial.ByteReader(r)
	n, err := serial.ReadUvarint(br)
	if err != nil {
		return err
	}
	trace := make([]int32, 0, n)
	for range n {
		lit, err := serial.ReadVarint(br)
		if err != nil {
			return err
		}
		trace = append(trace, int32(lit))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = trace
	p.restores = append(p.restores, len(trace))
	return nil
}

func (p *traceProcessor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = nil
	p.resets++
}

func (p *traceProcessor) Trace() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.trace)
}

func (p *traceProcessor) Resets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resets
}

func (p *traceProcessor) LastRestore() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.restores) == 0 {
		return -1
	}
	return p.restores[len(p.restores)-1]
}
