package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"team-relay/infrastructure/grpc/client"
	"team-relay/infrastructure/grpc/server"
	"team-relay/observability"
	"team-relay/protocol"
	"team-relay/runtime"
	"team-relay/runtime/workers"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseHubSuite struct {
	suite.Suite
	Config Config
	addr   string
	stop   func()
}

// SetupSuite loads the environment configuration and starts a hub when
// none is targeted.
func (s *BaseHubSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.HubAddr != "" {
		s.addr = s.Config.HubAddr
		s.stop = func() {}
		return
	}
	s.addr, s.stop = s.startHub()
}

func (s *BaseHubSuite) TearDownSuite() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *BaseHubSuite) startHub() (string, func()) {
	log := logs.GetLoggerFromLevel(slog.LevelInfo)
	monitoring := observability.NewMonitoringManager(log)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 0), runtime.DefaultHubConfig(), monitoring, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = orchestrator.Start(ctx) }()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	grpcServer := server.NewGRPCServer(log, orchestrator.Hub())
	go func() { _ = grpcServer.Serve(listener) }()

	return listener.Addr().String(), func() {
		grpcServer.Stop()
		cancel()
	}
}

// Step prints a colorized header for a scenario step.
func (s *BaseHubSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Client connects a new hub client, closed when the test ends.
func (s *BaseHubSuite) Client(name string, observers client.Observers) *client.HubClient {
	t := s.T()
	s.Step("Connecting " + name)

	if s.Config.DebugJSON {
		next := observers.OnMessage
		observers.OnMessage = func(msg protocol.Message) {
			if data, err := protocol.Encode(msg); err == nil {
				t.Logf("%s <- %s", name, data)
			}
			if next != nil {
				next(msg)
			}
		}
	}

	config := client.DefaultConfig(s.addr)
	config.Reconnect = false
	c := client.NewHubClient(logs.GetLoggerFromLevel(slog.LevelInfo), config, observers)
	s.Require().NoError(c.Connect(context.Background()), "Failed to connect to hub at "+s.addr)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Joined connects a client and joins it to team.
func (s *BaseHubSuite) Joined(name, team string, observers client.Observers) *client.HubClient {
	c := s.Client(name, observers)
	_, err := c.Join(context.Background(), team, name)
	s.Require().NoError(err)
	return c
}

// Team returns a team name unique to this run, so scenarios sharing a hub
// never see each other's questions.
func (s *BaseHubSuite) Team(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
