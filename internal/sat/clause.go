package sat

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	ErrZeroLiteral       = errors.New("literal must not be zero")
	ErrLiteralOutOfRange = errors.New("literal out of range")
)

// Clause is an immutable, ordered sequence of non-zero literals.
type Clause struct {
	literals []int32
}

func NewClause(literals ...int32) (Clause, error) {
	for i, lit := range literals {
		if lit == 0 {
			return Clause{}, fmt.Errorf("literal %d: %w", i, ErrZeroLiteral)
		}
		// -MinInt32 has no int32 variable.
		if lit == math.MinInt32 {
			return Clause{}, fmt.Errorf("literal %d: %w", i, ErrLiteralOutOfRange)
		}
	}
	return Clause{literals: slices.Clone(literals)}, nil
}

// MustClause is NewClause for literals known to be valid.
func MustClause(literals ...int32) Clause {
	c, err := NewClause(literals...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clause) Len() int {
	return len(c.literals)
}

func (c Clause) Literal(i int) int32 {
	return c.literals[i]
}

func (c Clause) Literals() []int32 {
	return slices.Clone(c.literals)
}

// Variables calls fn with the variable (absolute value) of every literal, in order.
func (c Clause) Variables(fn func(v int32)) {
	for _, lit := range c.literals {
		fn(Variable(lit))
	}
}

func (c Clause) Equal(o Clause) bool {
	return slices.Equal(c.literals, o.literals)
}

func (c Clause) String() string {
	var sb strings.Builder
	for _, lit := range c.literals {
		fmt.Fprintf(&sb, "%d ", lit)
	}
	sb.WriteString("0")
	return sb.String()
}

func Variable(literal int32) int32 {
	if literal < 0 {
		return -literal
	}
	return literal
}
