package server

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"team-relay/protocol"
	"team-relay/runtime"
	"team-relay/sink"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HubServer binds every Connect stream to one hub connection.
type HubServer struct {
	log *slog.Logger
	hub *runtime.Hub
}

func NewHubServer(log *slog.Logger, hub *runtime.Hub) *HubServer {
	return &HubServer{log: log, hub: hub}
}

// NewGRPCServer builds a gRPC server exposing the hub with stream logging.
func NewGRPCServer(log *slog.Logger, hub *runtime.Hub, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainStreamInterceptor(StreamLoggingInterceptor(log)))
	s := grpc.NewServer(opts...)
	protocol.RegisterHubServer(s, NewHubServer(log, hub))
	return s
}

// Connect blocks until the peer goes away or the hub terminates the
// connection. Inbound frames are handed to the hub in order by a single
// receive goroutine, outbound messages are drained from the connection sink.
func (s *HubServer) Connect(stream grpc.ServerStream) error {
	ctx, terminate := context.WithCancel(stream.Context())
	defer terminate()

	out := sink.NewConnectionSink(s.hub.Config().ConnectionBufferSize)
	connID := s.hub.Connect(out, terminate)
	defer s.hub.Disconnect(context.Background(), connID)

	recvErr := make(chan error, 1)
	go func() {
		for {
			var frame protocol.Frame
			if err := stream.RecvMsg(&frame); err != nil {
				recvErr <- err
				return
			}
			s.hub.Handle(ctx, connID, frame)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if stream.Context().Err() != nil {
				s.log.Debug("Client went away", "conn_id", connID)
				return nil
			}
			return status.Error(codes.Unavailable, "connection terminated by the hub")
		case <-out.Done():
			return status.Error(codes.Unavailable, "connection closed by the hub")
		case err := <-recvErr:
			if stderrors.Is(err, io.EOF) {
				s.log.Debug("Client closed the stream", "conn_id", connID)
				return nil
			}
			s.log.Debug("Receive failed", "conn_id", connID, "error", err)
			return err
		case msg := <-out.Outbound:
			if err := stream.SendMsg(&protocol.Frame{Message: msg}); err != nil {
				s.log.Error("failed to push message to stream",
					"conn_id", connID,
					"type", msg.MessageType(),
					"error", err)
				return err
			}
		}
	}
}
