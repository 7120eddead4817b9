package serial

import (
	"fmt"
	"io"
	"satstream/internal/sat"
)

const MaxVariables = 1 << 26

// AssignmentSerializer writes the variable count followed by one state byte per variable.
type AssignmentSerializer struct{}

func (AssignmentSerializer) Serialize(obj any, w io.Writer) error {
	a, ok := obj.(*sat.Assignment)
	if !ok || a == nil {
		return typeMismatch("*sat.Assignment", obj)
	}
	if err := WriteUvarint(w, uint64(a.VarCount())); err != nil {
		return err
	}
	states := make([]byte, a.VarCount())
	for v := 1; v <= a.VarCount(); v++ {
		st, _ := a.Get(v)
		states[v-1] = byte(st)
	}
	_, err := w.Write(states)
	return err
}

func (AssignmentSerializer) NewBuilder() Builder {
	return &assignmentBuilder{}
}

type assignmentBuilder struct {
	acc        varintAccumulator
	assignment *sat.Assignment
	next       int
	done       bool
}

func (b *assignmentBuilder) AddByte(c byte) (bool, error) {
	if b.done {
		return true, ErrBuilderFinished
	}
	if b.assignment == nil {
		n, ok, err := b.acc.add(c)
		if err != nil || !ok {
			return false, err
		}
		if n == 0 || n > MaxVariables {
			return false, fmt.Errorf("%w: invalid variable count %d", ErrSerialization, n)
		}
		a, err := sat.NewAssignment(int(n))
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		b.assignment = a
		b.next = 1
		return false, nil
	}
	st := sat.VariableState(c)
	if st > sat.Unset {
		return false, fmt.Errorf("%w: invalid variable state %d", ErrSerialization, c)
	}
	if err := b.assignment.Set(b.next, st); err != nil {
		return false, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	b.next++
	b.done = b.next > b.assignment.VarCount()
	return b.done, nil
}

func (b *assignmentBuilder) Finished() bool { return b.done }
func (b *assignmentBuilder) Object() any    { return b.assignment }
