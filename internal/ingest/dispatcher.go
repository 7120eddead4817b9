package ingest

import (
	"fmt"
	"log/slog"
	"satstream/internal/metrics"
	"satstream/internal/network"
	"satstream/internal/sat"

	"github.com/google/uuid"
)

// Sink receives the clause updates of all streams, in stream order.
type Sink interface {
	AddClauseUpdates(updates []sat.ClauseUpdate) error
}

// Observer is told about the non-clause messages of a stream.
type Observer interface {
	OnOffer(session string, offer network.Offer)
	OnAssignment(session string, a *sat.Assignment)
	OnTermination(session string, succeeded bool, reason string)
}

type Dispatcher struct {
	sink         Sink
	observer     Observer
	instanceHash uint64
	checkHash    bool
}

type Option func(*Dispatcher)

// WithInstanceHash makes every stream start with an offer for the instance
// with this hash.
func WithInstanceHash(hash uint64) Option {
	return func(d *Dispatcher) {
		d.instanceHash = hash
		d.checkHash = true
	}
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

func NewDispatcher(sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{sink: sink}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Session is the dispatch state of one producer stream. It is not safe for
// concurrent use.
type Session struct {
	d        *Dispatcher
	id       string
	log      *slog.Logger
	offered  bool
	pending  []sat.ClauseUpdate
	accepted uint64
}

func (d *Dispatcher) NewSession() *Session {
	id := uuid.NewString()
	return &Session{
		d:   d,
		id:  id,
		log: slog.With("session", id),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Accepted is the number of clause updates handed to the sink so far.
func (s *Session) Accepted() uint64 {
	return s.accepted
}

// Handle buffers clause updates until Flush and reports everything else to
// the observer.
func (s *Session) Handle(msg network.Message) error {
	metrics.IngestMessagesTotal.WithLabelValues(network.TypeName(msg.Type)).Inc()

	if u, ok := msg.ClauseUpdate(); ok {
		if s.d.checkHash && !s.offered {
			return ErrNoOffer
		}
		s.pending = append(s.pending, u)
		return nil
	}

	switch msg.Type {
	case network.TypeOffer:
		offer, ok := msg.Payload.(network.Offer)
		if !ok {
			return fmt.Errorf("offer payload %T", msg.Payload)
		}
		return s.handleOffer(offer)

	case network.TypeAssignment:
		a, ok := msg.Payload.(*sat.Assignment)
		if !ok || a == nil {
			return fmt.Errorf("assignment payload %T", msg.Payload)
		}
		s.log.Info("assignment received", "variables", a.VarCount())
		if s.d.observer != nil {
			s.d.observer.OnAssignment(s.id, a)
		}

	case network.TypeTermSucceed, network.TypeTermFail:
		reason, _ := msg.Payload.(string)
		succeeded := msg.Type == network.TypeTermSucceed
		s.log.Info("producer terminated", "succeeded", succeeded, "reason", reason)
		if s.d.observer != nil {
			s.d.observer.OnTermination(s.id, succeeded, reason)
		}

	default:
		s.log.Warn("ignoring message", "type", network.TypeName(msg.Type))
	}
	return nil
}

func (s *Session) handleOffer(offer network.Offer) error {
	if s.d.checkHash && offer.InstanceHash != s.d.instanceHash {
		return fmt.Errorf("%w: producer %q offered %016x, expected %016x",
			ErrInstanceMismatch, offer.SolverName, offer.InstanceHash, s.d.instanceHash)
	}
	s.offered = true
	s.log.Info("producer offered",
		"kind", offer.Kind,
		"solver", offer.SolverName,
		"delayed", offer.Delayed,
		"instanceHash", fmt.Sprintf("%016x", offer.InstanceHash),
	)
	if s.d.observer != nil {
		s.d.observer.OnOffer(s.id, offer)
	}
	return nil
}

// Flush hands the buffered clause updates to the sink as one batch.
func (s *Session) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.d.sink.AddClauseUpdates(s.pending); err != nil {
		return err
	}
	s.accepted += uint64(len(s.pending))
	s.log.Debug("flushed updates", "count", len(s.pending), "accepted", s.accepted)
	s.pending = nil
	return nil
}
