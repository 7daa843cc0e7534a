package sink

import (
	"context"
	"team-relay/domain/event"
	"team-relay/observability"
)

// Telemetry counts domain events for the health report.
type Telemetry struct {
	monitoring *observability.MonitoringManager
}

func NewTelemetrySink(monitoring *observability.MonitoringManager) *Telemetry {
	return &Telemetry{monitoring: monitoring}
}

func (t *Telemetry) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.MemberJoined:
		t.monitoring.IncrJoins()
	case event.MemberLeft:
		t.monitoring.IncrLeaves()
	case event.QuestionAsked:
		t.monitoring.IncrQuestionsAsked()
	case event.QuestionAnswered:
		t.monitoring.IncrQuestionsAnswered()
	case event.QuestionTimedOut:
		t.monitoring.IncrQuestionsTimedOut()
	}
	return nil
}
