package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"team-relay/infrastructure/grpc/server"
	"team-relay/internal"
	"team-relay/observability"
	"team-relay/runtime"
	"team-relay/runtime/workers"
	"team-relay/services"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hub terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the hub, serves it over gRPC and blocks until a signal arrives
// or the server fails. Deferred cleanups run before the exit code is returned.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	host := pflag.String("host", config.Host, "address the hub listens on")
	port := pflag.Int("port", config.Port, "port the hub listens on")
	pflag.Parse()
	config.Host, config.Port = *host, *port

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Hub & supervised workers
	monitoring := observability.NewMonitoringManager(logger)
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, config.HubConfig(), monitoring,
		config.MaxContentLength, services.UTCClock)

	if config.DebugPort > 0 || logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := config.DebugPort
		if debugPort == 0 {
			debugPort = config.Port + 1
		}
		internal.StartDebugServer(ctx, logger, debugPort, monitoring.GetLatest)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 4. gRPC Server Setup
	address := config.Address()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s := server.NewGRPCServer(logger, orchestrator.Hub())
	go func() {
		logger.Info("Starting hub", "address", address, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 6. Final Cleanup
	// Streams never end on their own, so they are cut rather than drained.
	logger.Info("Shutting down...")
	s.Stop()
	orchestrator.Stop()
	logger.Info("Hub stopped cleanly")

	return exitOK, nil
}
