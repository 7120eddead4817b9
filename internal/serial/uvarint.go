package serial

import "io"

// UvarintSerializer encodes a uint64 as a protobuf-style varint.
type UvarintSerializer struct{}

func (UvarintSerializer) Serialize(obj any, w io.Writer) error {
	x, ok := obj.(uint64)
	if !ok {
		return typeMismatch("uint64", obj)
	}
	return WriteUvarint(w, x)
}

func (UvarintSerializer) NewBuilder() Builder {
	return &uvarintBuilder{}
}

type uvarintBuilder struct {
	acc  varintAccumulator
	x    uint64
	done bool
}

func (b *uvarintBuilder) AddByte(c byte) (bool, error) {
	if b.done {
		return true, ErrBuilderFinished
	}
	x, ok, err := b.acc.add(c)
	if err != nil || !ok {
		return false, err
	}
	b.x = x
	b.done = true
	return true, nil
}

func (b *uvarintBuilder) Finished() bool { return b.done }
func (b *uvarintBuilder) Object() any    { return b.x }
