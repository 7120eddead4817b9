package sat

import (
	"errors"
	"fmt"
	"slices"
)

var ErrVariableOutOfRange = errors.New("variable out of range")

type VariableState uint8

const (
	DontCare VariableState = iota
	Set
	Unset
)

func (s VariableState) String() string {
	switch s {
	case DontCare:
		return "DONTCARE"
	case Set:
		return "SET"
	case Unset:
		return "UNSET"
	default:
		return "INVALID"
	}
}

// Assignment is a truth assignment of a SAT instance. Variables are 1-based and
// start out as DontCare.
type Assignment struct {
	states []VariableState
}

func NewAssignment(varCount int) (*Assignment, error) {
	if varCount <= 0 {
		return nil, fmt.Errorf("variable count %d must be positive", varCount)
	}
	return &Assignment{states: make([]VariableState, varCount)}, nil
}

func (a *Assignment) VarCount() int {
	return len(a.states)
}

func (a *Assignment) Set(variable int, state VariableState) error {
	if variable <= 0 || variable > len(a.states) {
		return fmt.Errorf("set %d: %w", variable, ErrVariableOutOfRange)
	}
	a.states[variable-1] = state
	return nil
}

func (a *Assignment) Get(variable int) (VariableState, error) {
	if variable <= 0 || variable > len(a.states) {
		return DontCare, fmt.Errorf("get %d: %w", variable, ErrVariableOutOfRange)
	}
	return a.states[variable-1], nil
}

// IntState returns v for Set, -v for Unset and 0 for DontCare.
func (a *Assignment) IntState(variable int) (int32, error) {
	st, err := a.Get(variable)
	if err != nil {
		return 0, err
	}
	switch st {
	case Set:
		return int32(variable), nil
	case Unset:
		return -int32(variable), nil
	default:
		return 0, nil
	}
}

func (a *Assignment) Equal(o *Assignment) bool {
	if a == nil || o == nil {
		return a == o
	}
	return slices.Equal(a.states, o.states)
}
