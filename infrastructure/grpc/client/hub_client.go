package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"team-relay/errors"
	"team-relay/protocol"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Config struct {
	Address              string
	Reconnect            bool
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	PingInterval         time.Duration
	JoinTimeout          time.Duration
	AckTimeout           time.Duration
	InboxTimeout         time.Duration
	DialOptions          []grpc.DialOption
}

func DefaultConfig(address string) Config {
	return Config{
		Address:              address,
		Reconnect:            true,
		ReconnectDelay:       2 * time.Second,
		MaxReconnectAttempts: 5,
		PingInterval:         15 * time.Second,
		JoinTimeout:          30 * time.Second,
		AckTimeout:           5 * time.Second,
		InboxTimeout:         5 * time.Second,
	}
}

// Observers receive every inbound message, whether or not it resolved a
// pending call. They run on the receive goroutine and must not block.
type Observers struct {
	OnMessage      func(protocol.Message)
	OnQuestion     func(*protocol.Question)
	OnAnswer       func(*protocol.Answer)
	OnMemberJoined func(*protocol.MemberJoined)
	OnMemberLeft   func(*protocol.MemberLeft)
	OnError        func(error)
}

// Identity is what the client learned from its last JOINED, replayed on
// reconnect.
type Identity struct {
	MemberID    string
	TeamID      string
	TeamName    string
	DisplayName string
}

// AnswerTimeoutError means the hub acknowledged the question but no answer
// came back in time. It matches errors.ErrTimeout.
type AnswerTimeoutError struct {
	QuestionID string
	Timeout    time.Duration
}

func (e *AnswerTimeoutError) Error() string {
	return fmt.Sprintf("question %s delivered but no answer within %s", e.QuestionID, e.Timeout)
}

func (e *AnswerTimeoutError) Unwrap() error { return errors.ErrTimeout }

// HubClient turns the push protocol of a hub into awaitable calls. It holds
// one stream at a time, one receive goroutine per stream and one ping loop.
type HubClient struct {
	log       *slog.Logger
	config    Config
	observers Observers
	waiters   *waiters

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	conn     *grpc.ClientConn
	stream   grpc.ClientStream
	identity *Identity
	closed   bool

	sendMu sync.Mutex
}

func NewHubClient(log *slog.Logger, config Config, observers Observers) *HubClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &HubClient{
		log:       log,
		config:    config,
		observers: observers,
		waiters:   newWaiters(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect dials the hub and opens the stream.
func (c *HubClient) Connect(ctx context.Context) error {
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, c.config.DialOptions...)
	conn, err := grpc.NewClient(c.config.Address, opts...)
	if err != nil {
		return errors.Newf(errors.CodeConnection, "dial %s: %v", c.config.Address, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.openStream(); err != nil {
		_ = conn.Close()
		return err
	}
	if c.config.PingInterval > 0 {
		go c.pingLoop()
	}
	c.log.Debug("Connected to hub", "address", c.config.Address)
	return nil
}

func (c *HubClient) openStream() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Newf(errors.CodeConnection, "client closed")
	}
	stream, err := protocol.OpenStream(c.ctx, c.conn)
	if err != nil {
		return errors.Newf(errors.CodeConnection, "open stream to %s: %v", c.config.Address, err)
	}
	c.stream = stream
	go c.recvLoop(stream)
	return nil
}

func (c *HubClient) recvLoop(stream grpc.ClientStream) {
	for {
		var frame protocol.Frame
		if err := stream.RecvMsg(&frame); err != nil {
			c.streamLost(stream, err)
			return
		}
		if frame.Err != nil {
			c.log.Warn("Undecodable frame from hub", "error", frame.Err)
			c.notifyError(frame.Err)
			continue
		}
		c.dispatch(frame.Message)
	}
}

func (c *HubClient) dispatch(msg protocol.Message) {
	c.waiters.resolve(msg)

	if c.observers.OnMessage != nil {
		c.observers.OnMessage(msg)
	}
	switch m := msg.(type) {
	case *protocol.Question:
		if c.observers.OnQuestion != nil {
			c.observers.OnQuestion(m)
		}
	case *protocol.Answer:
		if c.observers.OnAnswer != nil {
			c.observers.OnAnswer(m)
		}
	case *protocol.MemberJoined:
		if c.observers.OnMemberJoined != nil {
			c.observers.OnMemberJoined(m)
		}
	case *protocol.MemberLeft:
		if c.observers.OnMemberLeft != nil {
			c.observers.OnMemberLeft(m)
		}
	case *protocol.Error:
		c.notifyError(m.AsError())
	}
}

func (c *HubClient) notifyError(err error) {
	if c.observers.OnError != nil {
		c.observers.OnError(err)
	}
}

// streamLost fails the calls in flight, their replies died with the
// stream, then reconnects when enabled.
func (c *HubClient) streamLost(stream grpc.ClientStream, err error) {
	c.mu.Lock()
	if c.closed || c.stream != stream {
		c.mu.Unlock()
		return
	}
	c.stream = nil
	c.mu.Unlock()

	c.log.Warn("Connection to hub lost", "address", c.config.Address, "error", err)
	lost := errors.Newf(errors.CodeConnection, "connection to hub lost: %v", err)
	c.waiters.rejectAll(lost)

	if !c.config.Reconnect {
		c.notifyError(lost)
		return
	}
	go c.reconnect()
}

func (c *HubClient) reconnect() {
	for attempt := 1; attempt <= c.config.MaxReconnectAttempts; attempt++ {
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.config.ReconnectDelay):
		}
		if err := c.openStream(); err != nil {
			c.log.Warn("Reconnect attempt failed", "attempt", attempt, "error", err)
			continue
		}
		c.log.Info("Reconnected to hub", "attempt", attempt)
		c.replayJoin()
		return
	}
	err := errors.Newf(errors.CodeConnection, "gave up reconnecting after %d attempts", c.config.MaxReconnectAttempts)
	c.log.Error("Hub unreachable", "address", c.config.Address, "error", err)
	c.waiters.rejectAll(err)
	c.notifyError(err)
}

func (c *HubClient) replayJoin() {
	identity, ok := c.Identity()
	if !ok {
		return
	}
	if _, err := c.Join(c.ctx, identity.TeamName, identity.DisplayName); err != nil {
		c.log.Warn("Join replay failed", "team", identity.TeamName, "error", err)
		c.notifyError(err)
	}
}

func (c *HubClient) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := c.send(&protocol.Ping{}); err != nil {
				c.log.Debug("Ping skipped", "error", err)
			}
		}
	}
}

func (c *HubClient) send(msg protocol.Message) error {
	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()
	if stream == nil {
		return errors.Newf(errors.CodeConnection, "not connected to the hub")
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := stream.SendMsg(&protocol.Frame{Message: msg}); err != nil {
		return errors.Newf(errors.CodeConnection, "send %s: %v", msg.MessageType(), err)
	}
	return nil
}

// Join enters a team and records the identity for reconnects.
func (c *HubClient) Join(ctx context.Context, teamName, displayName string) (*protocol.Joined, error) {
	requestID := uuid.NewString()
	w := c.waiters.register(requestID, protocol.TypeJoined)
	defer c.waiters.remove(w)

	if err := c.send(&protocol.Join{TeamName: teamName, DisplayName: displayName, RequestID: requestID}); err != nil {
		return nil, err
	}
	msg, err := w.await(ctx, c.config.JoinTimeout)
	if err != nil {
		return nil, timeoutOr(err, "join %q not acknowledged within %s", teamName, c.config.JoinTimeout)
	}
	joined := msg.(*protocol.Joined)

	c.mu.Lock()
	c.identity = &Identity{
		MemberID:    joined.Member.MemberID,
		TeamID:      joined.Member.TeamID,
		TeamName:    joined.Member.TeamName,
		DisplayName: joined.Member.DisplayName,
	}
	c.mu.Unlock()
	return joined, nil
}

// Ask sends a question to a team and waits for its answer. The hub must
// acknowledge within min(AckTimeout, timeout), the answer must arrive
// before timeout has elapsed since the call started.
func (c *HubClient) Ask(ctx context.Context, toTeam, content, format string, timeout time.Duration) (*protocol.Answer, error) {
	start := time.Now()
	requestID := uuid.NewString()
	ack := c.waiters.register(requestID, protocol.TypeQuestionSent)
	defer c.waiters.remove(ack)
	answer := c.waiters.register(requestID, protocol.TypeAnswer)
	defer c.waiters.remove(answer)

	if err := c.send(&protocol.Ask{ToTeam: toTeam, Content: content, Format: format, RequestID: requestID}); err != nil {
		return nil, err
	}

	ackTimeout := min(c.config.AckTimeout, timeout)
	msg, err := ack.await(ctx, ackTimeout)
	if err != nil {
		return nil, timeoutOr(err, "question to %q not acknowledged within %s", toTeam, ackTimeout)
	}
	sent := msg.(*protocol.QuestionSent)

	remaining := timeout - time.Since(start)
	if remaining <= 0 {
		return nil, &AnswerTimeoutError{QuestionID: sent.QuestionID, Timeout: timeout}
	}
	msg, err = answer.await(ctx, remaining)
	if err != nil {
		if stderrors.Is(err, errWaitTimeout) {
			return nil, &AnswerTimeoutError{QuestionID: sent.QuestionID, Timeout: timeout}
		}
		return nil, err
	}
	return msg.(*protocol.Answer), nil
}

func (c *HubClient) GetInbox(ctx context.Context, includeAnswered bool) (*protocol.Inbox, error) {
	requestID := uuid.NewString()
	w := c.waiters.register(requestID, protocol.TypeInbox)
	defer c.waiters.remove(w)

	if err := c.send(&protocol.GetInbox{RequestID: requestID, IncludeAnswered: includeAnswered}); err != nil {
		return nil, err
	}
	msg, err := w.await(ctx, c.config.InboxTimeout)
	if err != nil {
		return nil, timeoutOr(err, "inbox not received within %s", c.config.InboxTimeout)
	}
	return msg.(*protocol.Inbox), nil
}

// Reply is fire and forget: failures on the hub side only reach OnError.
func (c *HubClient) Reply(_ context.Context, questionID, content, format string) error {
	return c.send(&protocol.Reply{QuestionID: questionID, Content: content, Format: format, RequestID: uuid.NewString()})
}

// Leave exits the current team and forgets the identity.
func (c *HubClient) Leave(_ context.Context) error {
	c.mu.Lock()
	c.identity = nil
	c.mu.Unlock()
	return c.send(&protocol.Leave{RequestID: uuid.NewString()})
}

func (c *HubClient) Identity() (Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return Identity{}, false
	}
	return *c.identity, true
}

// Close stops the loops, fails the calls in flight and closes the
// connection. It is idempotent.
func (c *HubClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stream = nil
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	c.waiters.rejectAll(errors.Newf(errors.CodeConnection, "client closed"))
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func timeoutOr(err error, format string, args ...any) error {
	if stderrors.Is(err, errWaitTimeout) {
		return errors.Newf(errors.CodeTimeout, format, args...)
	}
	return err
}
