package serial

import (
	"bytes"
	"fmt"
	"io"
)

// Serializer writes objects of one type in a self-delimiting format and hands out
// builders that reconstruct them byte by byte. Serializers are stateless.
type Serializer interface {
	Serialize(obj any, w io.Writer) error
	NewBuilder() Builder
}

// Builder is a single-use incremental decoder. AddByte reports true once the
// object is complete; Object is only meaningful after that.
type Builder interface {
	AddByte(b byte) (bool, error)
	Finished() bool
	Object() any
}

func Encode(s Serializer, obj any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Serialize(obj, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode feeds data into a fresh builder and returns the object and the number of
// bytes it consumed. Trailing bytes are left untouched.
func Decode(s Serializer, data []byte) (any, int, error) {
	b := s.NewBuilder()
	if b.Finished() {
		return b.Object(), 0, nil
	}
	for i, c := range data {
		done, err := b.AddByte(c)
		if err != nil {
			return nil, i + 1, err
		}
		if done {
			return b.Object(), i + 1, nil
		}
	}
	return nil, len(data), fmt.Errorf("%w: %w after %d bytes", ErrSerialization, ErrIncomplete, len(data))
}

func typeMismatch(want string, got any) error {
	return fmt.Errorf("%w: expected %s, got %T", ErrSerialization, want, got)
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
