package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"satstream/internal/network"
	"satstream/internal/sat"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const DefaultChunkSize = 32 << 10

type Client struct {
	conn      *grpc.ClientConn
	blueprint *network.Blueprint
}

// Dial connects to an ingest server. Without options the connection is
// insecure.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn, blueprint: network.SolverBlueprint()}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Stream frames messages into chunks of about chunkSize bytes. Chunk
// boundaries do not follow message boundaries.
type Stream struct {
	cs        grpc.ClientStream
	blueprint *network.Blueprint
	buf       bytes.Buffer
	chunkSize int
}

func (c *Client) OpenStream(ctx context.Context, chunkSize int) (*Stream, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	cs, err := c.conn.NewStream(ctx, &feedServiceDesc.Streams[0], fullStreamMethod)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return &Stream{cs: cs, blueprint: c.blueprint, chunkSize: chunkSize}, nil
}

func (s *Stream) Send(typ byte, payload any) error {
	mark := s.buf.Len()
	if err := s.blueprint.Serialize(typ, payload, &s.buf); err != nil {
		s.buf.Truncate(mark)
		return err
	}
	for s.buf.Len() >= s.chunkSize {
		if err := s.send(s.buf.Next(s.chunkSize)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) SendOffer(o network.Offer) error {
	return s.Send(network.TypeOffer, o)
}

func (s *Stream) SendClauseUpdate(u sat.ClauseUpdate) error {
	typ := network.TypeClauseAdd
	if u.Type == sat.UpdateRemove {
		typ = network.TypeClauseDelete
	}
	return s.Send(typ, u.Clause)
}

// SendRaw sends b as one chunk, after anything buffered.
func (s *Stream) SendRaw(b []byte) error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.send(b)
}

func (s *Stream) Flush() error {
	if s.buf.Len() == 0 {
		return nil
	}
	return s.send(s.buf.Next(s.buf.Len()))
}

func (s *Stream) send(b []byte) error {
	if err := s.cs.SendMsg(wrapperspb.Bytes(bytes.Clone(b))); err != nil {
		return fmt.Errorf("send chunk: %w", err)
	}
	return nil
}

// CloseAndRecv flushes, closes the send side and returns the number of clause
// updates the server accepted.
func (s *Stream) CloseAndRecv() (uint64, error) {
	// io.EOF means the server already ended the stream; its status is
	// returned by RecvMsg.
	if err := s.Flush(); err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if err := s.cs.CloseSend(); err != nil {
		return 0, fmt.Errorf("close send: %w", err)
	}
	ack := new(wrapperspb.UInt64Value)
	if err := s.cs.RecvMsg(ack); err != nil {
		return 0, err
	}
	return ack.GetValue(), nil
}
