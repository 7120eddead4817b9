package sat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClause(t *testing.T) {
	tests := []struct {
		name     string
		literals []int32
		wantErr  error
	}{
		{name: "empty", literals: nil},
		{name: "mixed signs", literals: []int32{1, -2, 3}},
		{name: "int32 bounds", literals: []int32{math.MaxInt32, math.MinInt32 + 1}},
		{name: "zero", literals: []int32{1, 0}, wantErr: ErrZeroLiteral},
		{name: "min int32", literals: []int32{2, math.MinInt32}, wantErr: ErrLiteralOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClause(tt.literals...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.literals), c.Len())
		})
	}
}

func TestClause_VariablesArePositive(t *testing.T) {
	c := MustClause(-3, math.MinInt32+1, 5)

	var vars []int32
	c.Variables(func(v int32) { vars = append(vars, v) })
	assert.Equal(t, []int32{3, math.MaxInt32, 5}, vars)
}

func TestClause_LiteralsAreCopied(t *testing.T) {
	lits := []int32{1, 2}
	c := MustClause(lits...)
	lits[0] = 9
	c.Literals()[1] = 9

	assert.Equal(t, []int32{1, 2}, c.Literals())
	assert.Equal(t, "1 2 0", c.String())
}
