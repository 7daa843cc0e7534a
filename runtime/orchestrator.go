// Package runtime runs the hub: live connections, protocol dispatch, event
// delivery and the background sweeps. It holds no business rule, those
// live in the use cases.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"team-relay/contract"
	"team-relay/observability"
	"team-relay/runtime/workers"
	"team-relay/services"
	"team-relay/sink"
)

// Orchestrator assembles an in-memory relay service, its hub and the
// supervised background workers.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	hub        *Hub
	monitoring *observability.MonitoringManager
	supervisor contract.ISupervisor
	sinks      *sink.EventFanout
}

// NewOrchestrator wires the use cases to the hub through an event fanout:
// the hub delivers the events and the telemetry sink counts them.
func NewOrchestrator(
	log *slog.Logger,
	supervisor contract.ISupervisor,
	config HubConfig,
	monitoring *observability.MonitoringManager,
	maxContentLength int,
	clock services.Clock,
) *Orchestrator {
	fanout := sink.NewEventFanout()
	service := services.NewRelayService(log, services.NewInMemoryRepositories(), fanout, clock, maxContentLength)
	hub := NewHub(log, config, service, NewRegistry(), monitoring, clock)
	fanout.Add(hub, sink.NewTelemetrySink(monitoring))
	return &Orchestrator{
		log:        log,
		hub:        hub,
		monitoring: monitoring,
		supervisor: supervisor,
		sinks:      fanout,
	}
}

func (o *Orchestrator) Hub() *Hub { return o.hub }

// Add registers extra event sinks next to the hub delivery.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.sinks.Add(sinks...)
}

// Start registers the sweeps and the health report with the supervisor and
// blocks until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	config := o.hub.Config()

	o.mu.Lock()
	o.supervisor.Add(
		workers.NewLivenessSweepWorker(o.log, o.hub, config.HeartbeatInterval),
		workers.NewQuestionTimeoutWorker(o.log, o.hub, config.QuestionSweepInterval),
		workers.NewHealthMonitoringWorker(o.log, o.monitoring, config.MetricInterval),
	)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised workers. Live connections are left to the
// transport.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
