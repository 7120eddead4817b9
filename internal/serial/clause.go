package serial

import (
	"fmt"
	"io"
	"math"
	"satstream/internal/sat"

	"google.golang.org/protobuf/encoding/protowire"
)

// ClauseSerializer encodes a clause as zigzag varint literals followed by a zero
// varint, the same terminator DIMACS uses.
type ClauseSerializer struct{}

func (ClauseSerializer) Serialize(obj any, w io.Writer) error {
	c, ok := obj.(sat.Clause)
	if !ok {
		return typeMismatch("sat.Clause", obj)
	}
	_, err := w.Write(appendClause(nil, c))
	return err
}

func (ClauseSerializer) NewBuilder() Builder {
	return &clauseBuilder{}
}

func appendClause(buf []byte, c sat.Clause) []byte {
	for i := 0; i < c.Len(); i++ {
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(c.Literal(i))))
	}
	return protowire.AppendVarint(buf, 0)
}

type clauseBuilder struct {
	acc      varintAccumulator
	literals []int32
	clause   sat.Clause
	done     bool
}

func (b *clauseBuilder) AddByte(c byte) (bool, error) {
	if b.done {
		return true, ErrBuilderFinished
	}
	x, ok, err := b.acc.add(c)
	if err != nil || !ok {
		return false, err
	}
	lit := protowire.DecodeZigZag(x)
	if lit == 0 {
		clause, err := sat.NewClause(b.literals...)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		b.clause = clause
		b.done = true
		return true, nil
	}
	if lit > math.MaxInt32 || lit <= math.MinInt32 {
		return false, fmt.Errorf("%w: literal %d out of range", ErrSerialization, lit)
	}
	b.literals = append(b.literals, int32(lit))
	return false, nil
}

func (b *clauseBuilder) Finished() bool { return b.done }
func (b *clauseBuilder) Object() any    { return b.clause }

// ClauseUpdateSerializer prefixes a clause with its update type byte.
type ClauseUpdateSerializer struct{}

func (ClauseUpdateSerializer) Serialize(obj any, w io.Writer) error {
	u, ok := obj.(sat.ClauseUpdate)
	if !ok {
		return typeMismatch("sat.ClauseUpdate", obj)
	}
	buf := make([]byte, 1, 1+u.Clause.Len()*2+1)
	buf[0] = byte(u.Type)
	_, err := w.Write(appendClause(buf, u.Clause))
	return err
}

func (ClauseUpdateSerializer) NewBuilder() Builder {
	return &clauseUpdateBuilder{}
}

type clauseUpdateBuilder struct {
	typ     sat.UpdateType
	hasType bool
	clause  clauseBuilder
}

func (b *clauseUpdateBuilder) AddByte(c byte) (bool, error) {
	if !b.hasType {
		t := sat.UpdateType(c)
		if t != sat.UpdateAdd && t != sat.UpdateRemove {
			return false, fmt.Errorf("%w: unknown update type %d", ErrSerialization, c)
		}
		b.typ = t
		b.hasType = true
		return false, nil
	}
	return b.clause.AddByte(c)
}

func (b *clauseUpdateBuilder) Finished() bool { return b.clause.done }

func (b *clauseUpdateBuilder) Object() any {
	return sat.ClauseUpdate{Clause: b.clause.clause, Type: b.typ}
}
