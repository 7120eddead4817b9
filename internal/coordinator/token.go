package coordinator

import "context"

type opKey struct{}

// opToken marks a context as belonging to an operation that holds some of the
// coordinator's locks. Processors receive such a context, so a call they make
// back into the coordinator can be recognized and ignored.
type opToken struct {
	owner    *Coordinator
	state    bool
	snapshot bool
}

func (c *Coordinator) heldLocks(ctx context.Context) (state, snapshot bool) {
	if ctx == nil {
		return false, false
	}
	tok, ok := ctx.Value(opKey{}).(opToken)
	if !ok || tok.owner != c {
		return false, false
	}
	return tok.state, tok.snapshot
}

func (c *Coordinator) withLocks(ctx context.Context, state, snapshot bool) context.Context {
	return context.WithValue(ctx, opKey{}, opToken{owner: c, state: state, snapshot: snapshot})
}
