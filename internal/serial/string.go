package serial

import (
	"fmt"
	"io"
)

const MaxStringLength = 1 << 20

// StringSerializer writes a uvarint byte length followed by the raw bytes.
type StringSerializer struct{}

func (StringSerializer) Serialize(obj any, w io.Writer) error {
	s, ok := obj.(string)
	if !ok {
		return typeMismatch("string", obj)
	}
	if len(s) > MaxStringLength {
		return fmt.Errorf("%w: string of %d bytes exceeds %d", ErrSerialization, len(s), MaxStringLength)
	}
	if err := WriteUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func (StringSerializer) NewBuilder() Builder {
	return &stringBuilder{}
}

type stringBuilder struct {
	acc       varintAccumulator
	haveLen   bool
	remaining uint64
	data      []byte
	done      bool
}

func (b *stringBuilder) AddByte(c byte) (bool, error) {
	if b.done {
		return true, ErrBuilderFinished
	}
	if !b.haveLen {
		n, ok, err := b.acc.add(c)
		if err != nil || !ok {
			return false, err
		}
		if n > MaxStringLength {
			return false, fmt.Errorf("%w: string length %d exceeds %d", ErrSerialization, n, MaxStringLength)
		}
		b.haveLen = true
		b.remaining = n
		b.data = make([]byte, 0, n)
		b.done = n == 0
		return b.done, nil
	}
	b.data = append(b.data, c)
	b.remaining--
	b.done = b.remaining == 0
	return b.done, nil
}

func (b *stringBuilder) Finished() bool { return b.done }
func (b *stringBuilder) Object() any    { return string(b.data) }
