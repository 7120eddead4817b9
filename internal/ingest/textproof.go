package ingest

import (
	"bufio"
	"fmt"
	"io"
	"satstream/internal/sat"
	"strconv"
	"strings"
)

// ReadTextProof reads clause updates in DRAT text form: one clause per line,
// literals terminated by 0, deletions prefixed with "d". Comment lines start
// with "c" and the DIMACS header line "p ..." is skipped.
func ReadTextProof(r io.Reader, fn func(sat.ClauseUpdate) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] == "c" || fields[0] == "p" {
			continue
		}

		typ := sat.UpdateAdd
		if fields[0] == "d" {
			typ = sat.UpdateRemove
			fields = fields[1:]
		}

		lits := make([]int32, 0, len(fields))
		terminated := false
		for _, f := range fields {
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return fmt.Errorf("line %d: literal %q: %w", line, f, err)
			}
			if v == 0 {
				terminated = true
				break
			}
			lits = append(lits, int32(v))
		}
		if !terminated {
			return fmt.Errorf("line %d: clause not terminated by 0", line)
		}

		c, err := sat.NewClause(lits...)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(sat.ClauseUpdate{Clause: c, Type: typ}); err != nil {
			return err
		}
	}
	return sc.Err()
}
