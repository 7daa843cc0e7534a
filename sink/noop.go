package sink

import (
	"context"
	"team-relay/domain/event"
)

// Noop drops every event.
type Noop struct{}

func NewNoopSink() Noop { return Noop{} }

func (Noop) Consume(context.Context, event.DomainEvent) error { return nil }
