package protocol

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype carrying JSON frames.
const CodecName = "json"

const ConnectMethod = "/relay.v1.Hub/Connect"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Frame is what travels on the gRPC stream. A frame that fails to decode
// is still delivered, with Err set, so the receiver can answer with an
// ERROR instead of losing the stream.
type Frame struct {
	Message   Message
	RequestID string
	Err       error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	frame, ok := v.(*Frame)
	if !ok {
		return nil, fmt.Errorf("json codec: unexpected type %T", v)
	}
	return Encode(frame.Message)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	frame, ok := v.(*Frame)
	if !ok {
		return fmt.Errorf("json codec: unexpected type %T", v)
	}
	msg, err := Decode(data)
	frame.Message = msg
	frame.Err = err
	frame.RequestID = PeekRequestID(data)
	return nil
}

func (jsonCodec) Name() string { return CodecName }

// HubServer is implemented by the hub side of the stream.
type HubServer interface {
	Connect(stream grpc.ServerStream) error
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	return srv.(HubServer).Connect(stream)
}

var HubServiceDesc = grpc.ServiceDesc{
	ServiceName: "relay.v1.Hub",
	HandlerType: (*HubServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Connect",
			Handler:       connectHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "relay/v1/hub",
}

func RegisterHubServer(s grpc.ServiceRegistrar, srv HubServer) {
	s.RegisterService(&HubServiceDesc, srv)
}

// OpenStream starts the bidirectional Connect stream on cc.
func OpenStream(ctx context.Context, cc grpc.ClientConnInterface, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	opts = append(opts, grpc.CallContentSubtype(CodecName))
	return cc.NewStream(ctx, &HubServiceDesc.Streams[0], ConnectMethod, opts...)
}
