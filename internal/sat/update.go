package sat

type UpdateType uint8

const (
	UpdateAdd UpdateType = iota
	UpdateRemove
)

func (t UpdateType) String() string {
	switch t {
	case UpdateAdd:
		return "add"
	case UpdateRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ClauseUpdate is the addition or removal of one clause. It is the unit of replay.
type ClauseUpdate struct {
	Clause Clause
	Type   UpdateType
}

func Add(c Clause) ClauseUpdate {
	return ClauseUpdate{Clause: c, Type: UpdateAdd}
}

func Remove(c Clause) ClauseUpdate {
	return ClauseUpdate{Clause: c, Type: UpdateRemove}
}

func (u ClauseUpdate) Equal(o ClauseUpdate) bool {
	return u.Type == o.Type && u.Clause.Equal(o.Clause)
}
