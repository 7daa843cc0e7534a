package sink

import (
	"sync"
	"team-relay/errors"
	"team-relay/protocol"
)

// ConnectionSink buffers the messages pushed to one live connection.
// Send never blocks: a full buffer drops the message and reports it.
// The transport drains Outbound until Done is closed.
type ConnectionSink struct {
	Outbound chan protocol.Message
	done     chan struct{}
	once     sync.Once
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ConnectionSink{
		Outbound: make(chan protocol.Message, bufferSize),
		done:     make(chan struct{}),
	}
}

func (s *ConnectionSink) Send(msg protocol.Message) error {
	select {
	case <-s.done:
		return errors.Newf(errors.CodeConnection, "connection closed, %s dropped", msg.MessageType())
	default:
	}
	select {
	case s.Outbound <- msg:
		return nil
	default:
		return errors.Newf(errors.CodeConnection, "outbound buffer full, %s dropped", msg.MessageType())
	}
}

// Close is idempotent. Outbound is left open so a late Send cannot panic.
func (s *ConnectionSink) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}
