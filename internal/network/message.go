package network

import (
	"fmt"
	"satstream/internal/sat"
	"satstream/internal/serial"
)

const (
	TypeClauseAdd    byte = 0
	TypeClauseDelete byte = 1
	TypeAssignment   byte = 2
	TypeTermSucceed  byte = 3
	TypeTermFail     byte = 4
	TypeOffer        byte = 5
)

var typeNames = map[byte]string{
	TypeClauseAdd:    "clause_add",
	TypeClauseDelete: "clause_delete",
	TypeAssignment:   "assignment",
	TypeTermSucceed:  "term_succeed",
	TypeTermFail:     "term_fail",
	TypeOffer:        "offer",
}

func TypeName(t byte) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type_%d", t)
}

// Message is one complete, decoded message from the byte stream.
type Message struct {
	Type    byte
	Payload any
}

// ClauseUpdate converts a clause add/delete message into the update it describes.
func (m Message) ClauseUpdate() (sat.ClauseUpdate, bool) {
	c, ok := m.Payload.(sat.Clause)
	if !ok {
		return sat.ClauseUpdate{}, false
	}
	switch m.Type {
	case TypeClauseAdd:
		return sat.Add(c), true
	case TypeClauseDelete:
		return sat.Remove(c), true
	default:
		return sat.ClauseUpdate{}, false
	}
}

// SolverBlueprint maps the producer message types to their serializers.
func SolverBlueprint() *Blueprint {
	return NewBlueprint(map[byte]serial.Serializer{
		TypeClauseAdd:    serial.ClauseSerializer{},
		TypeClauseDelete: serial.ClauseSerializer{},
		TypeAssignment:   serial.AssignmentSerializer{},
		TypeTermSucceed:  serial.StringSerializer{},
		TypeTermFail:     serial.StringSerializer{},
		TypeOffer:        OfferSerializer{},
	})
}
