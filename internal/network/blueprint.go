package network

import (
	"fmt"
	"io"
	"satstream/internal/serial"
)

// Blueprint maps each of the 256 message type bytes to a serializer.
type Blueprint struct {
	serializers [256]serial.Serializer
}

func NewBlueprint(types map[byte]serial.Serializer) *Blueprint {
	bp := &Blueprint{}
	for t, s := range types {
		bp.serializers[t] = s
	}
	return bp
}

func (bp *Blueprint) Has(typ byte) bool {
	return bp.serializers[typ] != nil
}

// Serialize writes the type byte followed by the payload.
func (bp *Blueprint) Serialize(typ byte, obj any, w io.Writer) error {
	s := bp.serializers[typ]
	if s == nil {
		return fmt.Errorf("serialize type %d: %w", typ, ErrUnknownMessageType)
	}
	if _, err := w.Write([]byte{typ}); err != nil {
		return err
	}
	return s.Serialize(obj, w)
}

func (bp *Blueprint) NewBuilder(typ byte) (serial.Builder, error) {
	s := bp.serializers[typ]
	if s == nil {
		return nil, fmt.Errorf("no builder for type %d: %w", typ, ErrUnknownMessageType)
	}
	return s.NewBuilder(), nil
}
