package runtime

import (
	"context"
	"log/slog"
	"team-relay/errors"
	"team-relay/observability"
	"team-relay/protocol"
	"team-relay/services"
	"team-relay/sink"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type hubFixture struct {
	hub        *Hub
	clock      *fakeClock
	monitoring *observability.MonitoringManager
}

type testConn struct {
	id         string
	sink       *sink.ConnectionSink
	terminated bool
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	clock := &fakeClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	monitoring := observability.NewMonitoringManager(log)
	fanout := sink.NewEventFanout()
	svc := services.NewRelayService(log, services.NewInMemoryRepositories(), fanout, clock.Now, 0)
	hub := NewHub(log, DefaultHubConfig(), svc, NewRegistry(), monitoring, clock.Now)
	fanout.Add(hub, sink.NewTelemetrySink(monitoring))
	return &hubFixture{hub: hub, clock: clock, monitoring: monitoring}
}

func (f *hubFixture) connect() *testConn {
	c := &testConn{sink: sink.NewConnectionSink(32)}
	c.id = f.hub.Connect(c.sink, func() { c.terminated = true })
	return c
}

func (f *hubFixture) send(c *testConn, msg protocol.Message) {
	f.hub.Handle(context.Background(), c.id, protocol.Frame{Message: msg, RequestID: protocol.RequestID(msg)})
}

func (f *hubFixture) join(t *testing.T, team, name string) (*testConn, *protocol.Joined) {
	t.Helper()
	c := f.connect()
	f.send(c, &protocol.Join{TeamName: team, DisplayName: name, RequestID: "join-" + name})
	joined, ok := c.next(t).(*protocol.Joined)
	require.True(t, ok)
	return c, joined
}

func (c *testConn) next(t *testing.T) protocol.Message {
	t.Helper()
	select {
	case msg := <-c.sink.Outbound:
		return msg
	default:
		require.FailNow(t, "expected an outbound message")
		return nil
	}
}

func (c *testConn) drain() []protocol.Message {
	var msgs []protocol.Message
	for {
		select {
		case msg := <-c.sink.Outbound:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func requireError(t *testing.T, msg protocol.Message, code, requestID string) {
	t.Helper()
	errMsg, ok := msg.(*protocol.Error)
	require.True(t, ok, "expected ERROR, got %T", msg)
	require.Equal(t, code, errMsg.Code)
	require.Equal(t, requestID, errMsg.RequestID)
}

func TestHub_Join_Notifies_Team(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)

	// Given Alice in frontend
	alice, aliceJoined := f.join(t, "Frontend", "Alice")
	req.Equal("frontend", aliceJoined.Member.TeamID)
	req.Equal("ONLINE", aliceJoined.Member.Status)
	req.Equal(1, aliceJoined.MemberCount)
	req.Equal("join-Alice", aliceJoined.RequestID)

	// When Bob joins the same team
	_, bobJoined := f.join(t, "frontend", "Bob")

	// Then Bob sees two members and Alice is told about Bob
	req.Equal(2, bobJoined.MemberCount)
	notice, ok := alice.next(t).(*protocol.MemberJoined)
	req.True(ok)
	req.Equal(bobJoined.Member, notice.Member)
	req.Empty(alice.drain())
}

func TestHub_Requires_Join(t *testing.T) {
	f := newHubFixture(t)
	c := f.connect()

	f.send(c, &protocol.Ask{ToTeam: "backend", Content: "hi", RequestID: "r-1"})
	requireError(t, c.next(t), errors.CodeNotJoined, "r-1")

	f.send(c, &protocol.GetInbox{RequestID: "r-2"})
	requireError(t, c.next(t), errors.CodeNotJoined, "r-2")

	f.send(c, &protocol.Reply{QuestionID: "q", Content: "x"})
	requireError(t, c.next(t), errors.CodeNotJoined, "")

	f.send(c, &protocol.Leave{RequestID: "r-3"})
	requireError(t, c.next(t), errors.CodeNotJoined, "r-3")

	// And the connection is still usable
	f.send(c, &protocol.Ping{})
	_, ok := c.next(t).(*protocol.Pong)
	require.True(t, ok)
}

func TestHub_Undecodable_Frame_Gets_Error(t *testing.T) {
	f := newHubFixture(t)
	c := f.connect()

	var frame protocol.Frame
	// The codec keeps the decode error on the frame
	_, decodeErr := protocol.Decode([]byte(`{"type":"SHOUT","requestId":"r-9"}`))
	frame.Err = decodeErr
	frame.RequestID = "r-9"
	f.hub.Handle(context.Background(), c.id, frame)

	requireError(t, c.next(t), errors.CodeInvalidMessage, "r-9")
	require.Equal(t, uint64(1), f.monitoring.GetLatest().ErrorsSent)
}

func TestHub_Ask_And_Reply(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, aliceJoined := f.join(t, "frontend", "Alice")
	bob, bobJoined := f.join(t, "backend", "Bob")
	carol, _ := f.join(t, "backend", "Carol")
	bob.drain()

	// When Alice asks the backend team
	f.send(alice, &protocol.Ask{ToTeam: "Backend", Content: "which port?", Format: "markdown", RequestID: "ask-1"})

	// Then Alice gets an acknowledgement
	sent, ok := alice.next(t).(*protocol.QuestionSent)
	req.True(ok)
	req.Equal("ask-1", sent.RequestID)
	req.Equal("backend", sent.ToTeamID)
	req.Equal("PENDING", sent.Status)

	// And every backend member receives the question
	for _, c := range []*testConn{bob, carol} {
		question, ok := c.next(t).(*protocol.Question)
		req.True(ok)
		req.Equal(sent.QuestionID, question.QuestionID)
		req.Equal("which port?", question.Content)
		req.Equal("markdown", question.Format)
		req.Equal(aliceJoined.Member.MemberID, question.From.MemberID)
		req.Equal("Alice", question.From.DisplayName)
		req.Equal("frontend", question.From.TeamName)
		req.Equal(f.clock.Now(), question.CreatedAt)
	}

	// When Bob replies
	f.clock.Advance(time.Second)
	f.send(bob, &protocol.Reply{QuestionID: sent.QuestionID, Content: "9999"})

	// Then only Alice receives the answer, correlated to her ASK
	answer, ok := alice.next(t).(*protocol.Answer)
	req.True(ok)
	req.Equal("ask-1", answer.RequestID)
	req.Equal(sent.QuestionID, answer.QuestionID)
	req.Equal("9999", answer.Content)
	req.Equal("plain", answer.Format)
	req.Equal(bobJoined.Member.MemberID, answer.From.MemberID)
	req.Equal(f.clock.Now(), answer.AnsweredAt)
	req.Empty(bob.drain())

	// When Carol replies too late
	f.send(carol, &protocol.Reply{QuestionID: sent.QuestionID, Content: "8080", RequestID: "reply-2"})

	// Then Carol is told and Alice gets nothing more
	requireError(t, carol.next(t), errors.CodeAlreadyAnswered, "reply-2")
	req.Empty(alice.drain())

	stats := f.monitoring.GetLatest()
	req.Equal(uint64(1), stats.QuestionsAsked)
	req.Equal(uint64(1), stats.QuestionsAnswered)
}

func TestHub_Ask_Failures(t *testing.T) {
	f := newHubFixture(t)
	alice, _ := f.join(t, "frontend", "Alice")

	f.send(alice, &protocol.Ask{ToTeam: "nobody", Content: "hi", RequestID: "r-1"})
	requireError(t, alice.next(t), errors.CodeTeamNotFound, "r-1")

	f.send(alice, &protocol.Ask{ToTeam: "frontend", Content: "hi", RequestID: "r-2"})
	requireError(t, alice.next(t), errors.CodeValidation, "r-2")

	f.send(alice, &protocol.Reply{QuestionID: "missing", Content: "x", RequestID: "r-3"})
	requireError(t, alice.next(t), errors.CodeQuestionNotFound, "r-3")
}

func TestHub_Ask_Team_Without_Live_Members(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, _ := f.join(t, "frontend", "Alice")
	ghost, _ := f.join(t, "ghosts", "Casper")
	f.hub.Disconnect(context.Background(), ghost.id)

	// When Alice asks a team that exists but has nobody connected
	f.send(alice, &protocol.Ask{ToTeam: "ghosts", Content: "anyone?", RequestID: "r-1"})

	// Then the question is acknowledged and nothing else happens
	_, ok := alice.next(t).(*protocol.QuestionSent)
	req.True(ok)
	req.Empty(alice.drain())
}

func TestHub_Inbox(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, _ := f.join(t, "frontend", "Alice")
	bob, _ := f.join(t, "backend", "Bob")

	f.send(alice, &protocol.Ask{ToTeam: "backend", Content: "status?", RequestID: "ask-1"})
	alice.drain()
	bob.drain()
	f.clock.Advance(1500 * time.Millisecond)

	f.send(bob, &protocol.GetInbox{RequestID: "inbox-1"})

	inbox, ok := bob.next(t).(*protocol.Inbox)
	req.True(ok)
	req.Equal("inbox-1", inbox.RequestID)
	req.Equal("backend", inbox.TeamID)
	req.Equal(1, inbox.TotalCount)
	req.Equal(1, inbox.PendingCount)
	req.Len(inbox.Questions, 1)
	req.Equal("status?", inbox.Questions[0].Content)
	req.Equal("PENDING", inbox.Questions[0].Status)
	req.Equal("Alice", inbox.Questions[0].From.DisplayName)
	req.Equal(int64(1500), inbox.Questions[0].AgeMs)
}

func TestHub_Disconnect_Notifies_Team(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, aliceJoined := f.join(t, "frontend", "Alice")
	bob, _ := f.join(t, "frontend", "Bob")
	alice.drain()

	// When Alice disconnects
	f.hub.Disconnect(context.Background(), alice.id)

	// Then Bob is told and Alice's sink is closed
	left, ok := bob.next(t).(*protocol.MemberLeft)
	req.True(ok)
	req.Equal(aliceJoined.Member.MemberID, left.MemberID)
	req.Equal("frontend", left.TeamID)
	select {
	case <-alice.sink.Done():
	default:
		req.Fail("sink should be closed")
	}

	// And a second disconnect is harmless
	f.hub.Disconnect(context.Background(), alice.id)
	req.Empty(bob.drain())
	req.Equal(int64(1), f.monitoring.GetLatest().LiveConnections)
}

func TestHub_Leave_Keeps_Connection(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, aliceJoined := f.join(t, "frontend", "Alice")

	f.send(alice, &protocol.Leave{RequestID: "bye"})
	left, ok := alice.next(t).(*protocol.Left)
	req.True(ok)
	req.Equal(aliceJoined.Member.MemberID, left.MemberID)
	req.Equal("bye", left.RequestID)

	f.send(alice, &protocol.GetInbox{RequestID: "r-1"})
	requireError(t, alice.next(t), errors.CodeNotJoined, "r-1")

	// The connection can join again
	f.send(alice, &protocol.Join{TeamName: "frontend", DisplayName: "Alice"})
	joined, ok := alice.next(t).(*protocol.Joined)
	req.True(ok)
	req.Equal(1, joined.MemberCount)
}

func TestHub_Rejoin_Leaves_Previous_Team(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, aliceJoined := f.join(t, "frontend", "Alice")
	bob, _ := f.join(t, "frontend", "Bob")
	alice.drain()

	// When Alice joins another team on the same connection
	f.send(alice, &protocol.Join{TeamName: "backend", DisplayName: "Alice"})

	// Then frontend sees her leave and she is a backend member
	left, ok := bob.next(t).(*protocol.MemberLeft)
	req.True(ok)
	req.Equal(aliceJoined.Member.MemberID, left.MemberID)
	joined, ok := alice.next(t).(*protocol.Joined)
	req.True(ok)
	req.Equal("backend", joined.Member.TeamID)
	req.Equal(1, joined.MemberCount)

	// And questions to backend now reach her
	f.send(bob, &protocol.Ask{ToTeam: "backend", Content: "hello", RequestID: "r"})
	_, ok = bob.next(t).(*protocol.QuestionSent)
	req.True(ok)
	_, ok = alice.next(t).(*protocol.Question)
	req.True(ok)
}

func TestHub_Failed_Rejoin_Keeps_Membership(t *testing.T) {
	for name, join := range map[string]*protocol.Join{
		"invalid team name":  {TeamName: "1-not-a-team", DisplayName: "Bob", RequestID: "rejoin"},
		"blank display name": {TeamName: "frontend", DisplayName: "   ", RequestID: "rejoin"},
	} {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			f := newHubFixture(t)
			bob, bobJoined := f.join(t, "backend", "Bob")
			carol, _ := f.join(t, "backend", "Carol")
			bob.drain()

			// When Bob sends a JOIN that cannot succeed
			f.send(bob, join)

			// Then he only gets an error and stays in backend
			requireError(t, bob.next(t), errors.CodeValidation, "rejoin")
			req.Empty(carol.drain())
			f.send(bob, &protocol.GetInbox{RequestID: "r-1"})
			inbox, ok := bob.next(t).(*protocol.Inbox)
			req.True(ok, "expected INBOX")
			req.Equal("backend", inbox.TeamID)

			// And backend still counts him
			_, daveJoined := f.join(t, "backend", "Dave")
			req.Equal(3, daveJoined.MemberCount)
			notice, ok := bob.next(t).(*protocol.MemberJoined)
			req.True(ok)
			req.Equal(daveJoined.Member.MemberID, notice.Member.MemberID)
			req.NotEqual(bobJoined.Member.MemberID, notice.Member.MemberID)
		})
	}
}

func TestHub_SweepLiveness_Terminates_Silent_Connections(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, _ := f.join(t, "frontend", "Alice")
	bob, _ := f.join(t, "frontend", "Bob")
	alice.drain()

	// Given Bob keeps pinging and Alice stays silent
	f.clock.Advance(50 * time.Second)
	f.send(bob, &protocol.Ping{})
	bob.drain()
	f.clock.Advance(11 * time.Second)

	// When the sweep runs
	terminated := f.hub.SweepLiveness(context.Background())

	// Then only Alice is cut off, and Bob is told she left
	req.Equal([]string{alice.id}, terminated)
	req.True(alice.terminated)
	req.False(bob.terminated)
	_, ok := bob.next(t).(*protocol.MemberLeft)
	req.True(ok)
	req.Equal(uint64(1), f.monitoring.GetLatest().StaleConnections)
}

func TestHub_ExpireQuestions_Drops_Late_Replies(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, _ := f.join(t, "frontend", "Alice")
	bob, _ := f.join(t, "backend", "Bob")

	f.send(alice, &protocol.Ask{ToTeam: "backend", Content: "quick?", RequestID: "ask-1"})
	sent, ok := alice.next(t).(*protocol.QuestionSent)
	req.True(ok)
	bob.drain()

	// When the question outlives its timeout
	f.clock.Advance(31 * time.Second)
	expired := f.hub.ExpireQuestions(context.Background())
	req.Len(expired, 1)
	req.Equal(sent.QuestionID, expired[0].String())

	// Then a late reply is refused and never reaches Alice
	f.send(bob, &protocol.Reply{QuestionID: sent.QuestionID, Content: "sorry", RequestID: "late"})
	requireError(t, bob.next(t), errors.CodeAlreadyAnswered, "late")
	req.Empty(alice.drain())
	req.Equal(uint64(1), f.monitoring.GetLatest().QuestionsTimedOut)
}

func TestHub_Answer_To_Departed_Asker_Is_Dropped(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t)
	alice, _ := f.join(t, "frontend", "Alice")
	bob, _ := f.join(t, "backend", "Bob")

	f.send(alice, &protocol.Ask{ToTeam: "backend", Content: "ping?", RequestID: "ask-1"})
	sent, ok := alice.next(t).(*protocol.QuestionSent)
	req.True(ok)
	bob.drain()
	f.hub.Disconnect(context.Background(), alice.id)

	f.send(bob, &protocol.Reply{QuestionID: sent.QuestionID, Content: "pong"})

	req.Empty(bob.drain())
	req.Empty(alice.drain())
}

func TestHub_Ping(t *testing.T) {
	f := newHubFixture(t)
	c := f.connect()

	f.send(c, &protocol.Ping{})

	pong, ok := c.next(t).(*protocol.Pong)
	require.True(t, ok)
	require.Equal(t, f.clock.Now(), pong.Timestamp)
}
