package network

import (
	"fmt"
	"io"
	"satstream/internal/serial"
)

type OfferKind uint8

const (
	OfferSolver OfferKind = iota
	OfferProof
)

func (k OfferKind) String() string {
	switch k {
	case OfferSolver:
		return "solver"
	case OfferProof:
		return "proof"
	default:
		return "unknown"
	}
}

// Offer identifies a producer. Solvers advertise the hash of the instance they
// run so the consumer can check it matches its own copy.
type Offer struct {
	Kind         OfferKind
	SolverName   string
	Delayed      bool
	InstanceHash uint64
}

// OfferSerializer layout: kind byte, flags byte, name (string), uvarint hash.
type OfferSerializer struct{}

func (OfferSerializer) Serialize(obj any, w io.Writer) error {
	o, ok := obj.(Offer)
	if !ok {
		return fmt.Errorf("%w: expected network.Offer, got %T", serial.ErrSerialization, obj)
	}
	var flags byte
	if o.Delayed {
		flags = 1
	}
	if _, err := w.Write([]byte{byte(o.Kind), flags}); err != nil {
		return err
	}
	if err := (serial.StringSerializer{}).Serialize(o.SolverName, w); err != nil {
		return err
	}
	return serial.UvarintSerializer{}.Serialize(o.InstanceHash, w)
}

func (OfferSerializer) NewBuilder() serial.Builder {
	return &offerBuilder{}
}

type offerBuilder struct {
	stage int
	offer Offer
	name  serial.Builder
	hash  serial.Builder
	done  bool
}

func (b *offerBuilder) AddByte(c byte) (bool, error) {
	switch b.stage {
	case 0:
		if OfferKind(c) > OfferProof {
			return false, fmt.Errorf("%w: unknown offer kind %d", serial.ErrSerialization, c)
		}
		b.offer.Kind = OfferKind(c)
		b.stage++
	case 1:
		b.offer.Delayed = c&1 != 0
		b.name = serial.StringSerializer{}.NewBuilder()
		b.stage++
	case 2:
		done, err := b.name.AddByte(c)
		if err != nil {
			return false, err
		}
		if done {
			b.offer.SolverName = b.name.Object().(string)
			b.hash = serial.UvarintSerializer{}.NewBuilder()
			b.stage++
		}
	case 3:
		done, err := b.hash.AddByte(c)
		if err != nil || !done {
			return false, err
		}
		b.offer.InstanceHash = b.hash.Object().(uint64)
		b.done = true
		b.stage++
		return true, nil
	default:
		return true, serial.ErrBuilderFinished
	}
	return false, nil
}

func (b *offerBuilder) Finished() bool { return b.done }
func (b *offerBuilder) Object() any    { return b.offer }
