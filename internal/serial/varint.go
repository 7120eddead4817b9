package serial

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// varintAccumulator collects the bytes of one varint handed in one at a time.
type varintAccumulator struct {
	buf [binary.MaxVarintLen64]byte
	n   int
}

func (v *varintAccumulator) add(b byte) (uint64, bool, error) {
	if v.n == len(v.buf) {
		return 0, false, fmt.Errorf("%w: varint overflows 64 bits", ErrSerialization)
	}
	v.buf[v.n] = b
	v.n++
	if b&0x80 != 0 {
		return 0, false, nil
	}
	x, n := protowire.ConsumeVarint(v.buf[:v.n])
	v.n = 0
	if n < 0 {
		return 0, false, fmt.Errorf("%w: %w", ErrSerialization, protowire.ParseError(n))
	}
	return x, true, nil
}

func WriteUvarint(w io.Writer, x uint64) error {
	_, err := w.Write(protowire.AppendVarint(nil, x))
	return err
}

func WriteVarint(w io.Writer, x int64) error {
	return WriteUvarint(w, protowire.EncodeZigZag(x))
}

func WriteFloat32(w io.Writer, f float32) error {
	_, err := w.Write(protowire.AppendFixed32(nil, math.Float32bits(f)))
	return err
}

func ReadUvarint(r io.ByteReader) (uint64, error) {
	x, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerialization, unexpected(err))
	}
	return x, nil
}

func ReadVarint(r io.ByteReader) (int64, error) {
	x, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return protowire.DecodeZigZag(x), nil
}

func ReadFloat32(r io.ByteReader) (float32, error) {
	var raw [4]byte
	for i := range raw {
		c, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrSerialization, unexpected(err))
		}
		raw[i] = c
	}
	bits, _ := protowire.ConsumeFixed32(raw[:])
	return math.Float32frombits(bits), nil
}

// ByteReader adapts r for byte-wise reads. A reader that is not already an
// io.ByteReader is read one byte per call so nothing is consumed ahead.
func ByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &singleByteReader{r: r}
}

type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, err
	}
	return s.buf[0], nil
}
