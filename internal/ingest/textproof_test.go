package ingest

import (
	"satstream/internal/sat"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTextProof(t *testing.T) {
	input := `c comment
p cnf 3 2
1 -2 0
d 1 -2 0

-3 0
`
	var got []sat.ClauseUpdate
	err := ReadTextProof(strings.NewReader(input), func(u sat.ClauseUpdate) error {
		got = append(got, u)
		return nil
	})
	require.NoError(t, err)

	want := []sat.ClauseUpdate{
		sat.Add(sat.MustClause(1, -2)),
		sat.Remove(sat.MustClause(1, -2)),
		sat.Add(sat.MustClause(-3)),
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "update %d", i)
	}
}

func TestReadTextProof_Malformed(t *testing.T) {
	noop := func(sat.ClauseUpdate) error { return nil }

	err := ReadTextProof(strings.NewReader("1 2\n"), noop)
	require.ErrorContains(t, err, "line 1: clause not terminated")

	err = ReadTextProof(strings.NewReader("1 0\n1 x 0\n"), noop)
	require.ErrorContains(t, err, `line 2: literal "x"`)

	err = ReadTextProof(strings.NewReader("-2147483648 0\n"), noop)
	require.ErrorIs(t, err, sat.ErrLiteralOutOfRange)
}
