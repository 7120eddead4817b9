package network

import (
	"fmt"
	"satstream/internal/serial"
)

// Receiver turns an arbitrarily chunked byte stream into messages. It is not safe
// for concurrent use. After the first failure every call returns that failure.
type Receiver struct {
	bp      *Blueprint
	typ     byte
	builder serial.Builder
	err     error
}

func NewReceiver(bp *Blueprint) *Receiver {
	return &Receiver{bp: bp}
}

// Receive consumes bytes from chunk until one message is complete or the chunk is
// exhausted. It returns the message (nil if none completed) and the number of
// bytes consumed; callers resubmit chunk[n:] until it is empty.
func (r *Receiver) Receive(chunk []byte) (*Message, int, error) {
	if r.err != nil {
		return nil, 0, r.err
	}

	n := 0
	if r.builder == nil {
		if len(chunk) == 0 {
			return nil, 0, nil
		}
		r.typ = chunk[0]
		n++
		b, err := r.bp.NewBuilder(r.typ)
		if err != nil {
			return nil, n, r.fail(err)
		}
		r.builder = b
	}

	if r.builder.Finished() {
		return r.emit(), n, nil
	}

	for n < len(chunk) {
		done, err := r.builder.AddByte(chunk[n])
		n++
		if err != nil {
			return nil, n, r.fail(err)
		}
		if done {
			return r.emit(), n, nil
		}
	}
	return nil, n, nil
}

// ReceiveAll drains chunk and returns every message completed by it.
func (r *Receiver) ReceiveAll(chunk []byte) ([]Message, error) {
	var msgs []Message
	for len(chunk) > 0 {
		msg, n, err := r.Receive(chunk)
		if err != nil {
			return msgs, err
		}
		chunk = chunk[n:]
		if msg != nil {
			msgs = append(msgs, *msg)
		}
	}
	return msgs, nil
}

// Pending reports whether a message has been started but not completed.
func (r *Receiver) Pending() bool {
	return r.builder != nil
}

// Failed reports the error that poisoned the receiver, if any.
func (r *Receiver) Failed() error {
	return r.err
}

func (r *Receiver) emit() *Message {
	msg := &Message{Type: r.typ, Payload: r.builder.Object()}
	r.builder = nil
	return msg
}

func (r *Receiver) fail(err error) error {
	r.builder = nil
	r.err = fmt.Errorf("%w: %w", ErrReceiverFailed, err)
	return r.err
}
