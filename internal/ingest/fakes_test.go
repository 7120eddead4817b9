package ingest

import (
	"satstream/internal/network"
	"satstream/internal/sat"
	"slices"
	"sync"
)

type fakeSink struct {
	mu      sync.Mutex
	updates []sat.ClauseUpdate
	batches int
	err     error
}

func (s *fakeSink) AddClauseUpdates(updates []sat.ClauseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, updates...)
	s.batches++
	return nil
}

func (s *fakeSink) Updates() []sat.ClauseUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.updates)
}

type termination struct {
	succeeded bool
	reason    string
}

type fakeObserver struct {
	mu           sync.Mutex
	offers       []network.Offer
	assignments  []*sat.Assignment
	terminations []termination
}

func (o *fakeObserver) OnOffer(_ string, offer network.Offer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.offers = append(o.offers, offer)
}

func (o *fakeObserver) OnAssignment(_ string, a *sat.Assignment) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.assignments = append(o.assignments, a)
}

func (o *fakeObserver) OnTermination(_ string, succeeded bool, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.terminations = append(o.terminations, termination{succeeded: succeeded, reason: reason})
}

func (o *fakeObserver) Terminations() []termination {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.terminations)
}

func (o *fakeObserver) Offers() []network.Offer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.offers)
}
