package sink

import (
	"context"
	stderrors "errors"
	"sync"
	"team-relay/contract"
	"team-relay/domain/event"
)

// EventFanout hands each event to every registered sink, synchronously and
// in registration order. Sinks can be added after the fanout has been
// given to the use cases, which breaks the hub <-> service construction
// cycle.
//
// It is best effort: a failing sink does not stop the others, the errors
// are joined and returned.
type EventFanout struct {
	mu    sync.RWMutex
	sinks []contract.EventSink
}

func NewEventFanout(sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{sinks: sinks}
}

func (f *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sinks...)
	return f
}

func (f *EventFanout) Consume(ctx context.Context, e event.DomainEvent) error {
	f.mu.RLock()
	sinks := f.sinks
	f.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Consume(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
