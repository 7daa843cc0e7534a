package runtime

import (
	"context"
	"log/slog"
	"sync"
	"team-relay/contract"
	"team-relay/domain"
	"team-relay/domain/event"
	"team-relay/errors"
	"team-relay/observability"
	"team-relay/protocol"
	"team-relay/services"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type HubConfig struct {
	HeartbeatInterval     time.Duration
	ClientTimeout         time.Duration
	IdleAfter             time.Duration
	QuestionSweepInterval time.Duration
	QuestionTimeout       time.Duration
	MetricInterval        time.Duration
	ConnectionBufferSize  int
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		HeartbeatInterval:     30 * time.Second,
		ClientTimeout:         60 * time.Second,
		IdleAfter:             5 * time.Minute,
		QuestionSweepInterval: 5 * time.Second,
		QuestionTimeout:       30 * time.Second,
		MetricInterval:        time.Minute,
		ConnectionBufferSize:  64,
	}
}

// Hub tracks live connections, binds them to members and routes protocol
// messages between them. Every state change (inbound frame, disconnect,
// sweep) runs under one mutex, so use cases never run concurrently.
// Delivery (Consume) is called from inside those sections and only
// touches the registry and read lookups.
type Hub struct {
	mu         sync.Mutex
	log        *slog.Logger
	config     HubConfig
	service    services.IRelayService
	registry   *Registry
	monitoring *observability.MonitoringManager
	now        services.Clock

	reqMu       sync.Mutex
	askRequests map[domain.QuestionID]string // question -> ASK request id
}

func NewHub(
	log *slog.Logger,
	config HubConfig,
	service services.IRelayService,
	registry *Registry,
	monitoring *observability.MonitoringManager,
	clock services.Clock,
) *Hub {
	if clock == nil {
		clock = services.UTCClock
	}
	return &Hub{
		log:         log,
		config:      config,
		service:     service,
		registry:    registry,
		monitoring:  monitoring,
		now:         clock,
		askRequests: make(map[domain.QuestionID]string),
	}
}

func (h *Hub) Config() HubConfig { return h.config }

// Connect registers a new live connection and returns its id. terminate
// must tear the transport down without waiting for the peer.
func (h *Hub) Connect(sink contract.ConnectionSink, terminate func()) string {
	connID := uuid.NewString()
	h.registry.Register(connID, sink, terminate, h.now())
	h.monitoring.ConnectionOpened()
	h.log.Debug("Connection opened", "conn_id", connID)
	return connID
}

// Disconnect releases a connection: its member leaves its team and the
// sink is closed. Calling it twice is harmless.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnectLocked(ctx, connID)
}

func (h *Hub) disconnectLocked(ctx context.Context, connID string) {
	session, ok := h.registry.Session(connID)
	if !ok {
		return
	}
	if session.Joined() {
		h.leaveLocked(ctx, session)
	}
	h.registry.Remove(connID)
	session.Sink.Close()
	h.monitoring.ConnectionClosed()
	h.log.Debug("Connection closed", "conn_id", connID, "member_id", session.MemberID)
}

// Handle processes one inbound frame. Application failures are answered
// with an ERROR frame, the connection always stays open.
func (h *Hub) Handle(ctx context.Context, connID string, frame protocol.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.monitoring.IncrFramesIn()
	h.registry.Touch(connID, h.now())
	session, ok := h.registry.Session(connID)
	if !ok {
		return
	}
	if frame.Err != nil {
		h.log.Debug("Undecodable frame", "conn_id", connID, "error", frame.Err)
		h.replyError(session, frame.Err, frame.RequestID)
		return
	}

	reply, err := h.dispatch(ctx, session, frame.Message)
	if err != nil {
		h.replyError(session, err, protocol.RequestID(frame.Message))
		return
	}
	if reply != nil {
		h.send(session.Sink, reply)
	}
}

func (h *Hub) dispatch(ctx context.Context, session Session, msg protocol.Message) (protocol.Message, error) {
	switch m := msg.(type) {
	case *protocol.Ping:
		return &protocol.Pong{Timestamp: h.now()}, nil
	case *protocol.Join:
		return h.join(ctx, session, m)
	}

	if !session.Joined() {
		return nil, errors.Newf(errors.CodeNotJoined, "%s requires joining a team first", msg.MessageType())
	}
	switch m := msg.(type) {
	case *protocol.Leave:
		h.leaveLocked(ctx, session)
		return &protocol.Left{MemberID: session.MemberID.String(), RequestID: m.RequestID}, nil
	case *protocol.Ask:
		return h.ask(ctx, session, m)
	case *protocol.Reply:
		return nil, h.reply(ctx, session, m)
	case *protocol.GetInbox:
		return h.inbox(ctx, session, m)
	}
	return nil, errors.Newf(errors.CodeInvalidMessage, "%s is not accepted by the hub", msg.MessageType())
}

func (h *Hub) join(ctx context.Context, session Session, m *protocol.Join) (protocol.Message, error) {
	input := services.JoinTeamInput{TeamName: m.TeamName, DisplayName: m.DisplayName}
	// A rejected JOIN keeps the current membership.
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if session.Joined() {
		h.leaveLocked(ctx, session)
	}
	out, err := h.service.JoinTeam(ctx, input)
	if err != nil {
		return nil, err
	}
	h.registry.Bind(session.ConnID, out.MemberID, out.TeamID)
	h.log.Info("Member joined", "member_id", out.MemberID, "team_id", out.TeamID, "display_name", out.DisplayName)
	return &protocol.Joined{
		Member: protocol.MemberInfo{
			MemberID:    out.MemberID.String(),
			TeamID:      out.TeamID.String(),
			TeamName:    out.TeamName,
			DisplayName: out.DisplayName,
			Status:      string(out.Status),
		},
		MemberCount: out.MemberCount,
		RequestID:   m.RequestID,
	}, nil
}

func (h *Hub) leaveLocked(ctx context.Context, session Session) {
	if _, err := h.service.LeaveTeam(ctx, session.MemberID); err != nil && !errors.IsNotFound(err) {
		h.log.Warn("Leave failed", "member_id", session.MemberID, "error", err)
	}
	h.registry.Unbind(session.ConnID)
	h.log.Info("Member left", "member_id", session.MemberID, "team_id", session.TeamID)
}

func (h *Hub) ask(ctx context.Context, session Session, m *protocol.Ask) (protocol.Message, error) {
	format, err := domain.ParseContentFormat(m.Format)
	if err != nil {
		return nil, err
	}
	out, err := h.service.AskQuestion(ctx, services.AskQuestionInput{
		FromMemberID: session.MemberID,
		ToTeamName:   m.ToTeam,
		Content:      m.Content,
		Format:       format,
	})
	if err != nil {
		return nil, err
	}
	h.reqMu.Lock()
	h.askRequests[out.QuestionID] = m.RequestID
	h.reqMu.Unlock()
	return &protocol.QuestionSent{
		QuestionID: out.QuestionID.String(),
		ToTeamID:   out.ToTeamID.String(),
		Status:     string(out.Status),
		RequestID:  m.RequestID,
	}, nil
}

func (h *Hub) reply(ctx context.Context, session Session, m *protocol.Reply) error {
	questionID, err := domain.ParseQuestionID(m.QuestionID)
	if err != nil {
		return err
	}
	format, err := domain.ParseContentFormat(m.Format)
	if err != nil {
		return err
	}
	_, err = h.service.ReplyQuestion(ctx, services.ReplyQuestionInput{
		QuestionID:   questionID,
		FromMemberID: session.MemberID,
		Content:      m.Content,
		Format:       format,
	})
	return err
}

func (h *Hub) inbox(ctx context.Context, session Session, m *protocol.GetInbox) (protocol.Message, error) {
	inbox, err := h.service.GetInbox(ctx, services.GetInboxInput{
		MemberID:        session.MemberID,
		TeamID:          session.TeamID,
		IncludeAnswered: m.IncludeAnswered,
	})
	if err != nil {
		return nil, err
	}
	return &protocol.Inbox{
		TeamID:   inbox.TeamID.String(),
		TeamName: inbox.TeamName,
		Questions: lo.Map(inbox.Questions, func(item services.InboxItem, _ int) protocol.InboxQuestion {
			return protocol.InboxQuestion{
				QuestionID: item.QuestionID.String(),
				From: protocol.MemberInfo{
					MemberID:    item.FromMemberID.String(),
					TeamID:      item.FromTeamID.String(),
					TeamName:    item.FromTeamName,
					DisplayName: item.FromDisplayName,
					Status:      string(item.FromStatus),
				},
				Content:   item.Content.Text(),
				Format:    string(item.Content.Format()),
				Status:    string(item.Status),
				CreatedAt: item.CreatedAt,
				AgeMs:     item.Age.Milliseconds(),
			}
		}),
		TotalCount:   inbox.TotalCount,
		PendingCount: inbox.PendingCount,
		RequestID:    m.RequestID,
	}, nil
}

// SweepLiveness terminates the connections silent for longer than
// ClientTimeout and marks long inactive members IDLE. It returns the
// terminated connection ids.
func (h *Hub) SweepLiveness(ctx context.Context) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	stale := h.registry.Stale(h.now(), h.config.ClientTimeout)
	for _, session := range stale {
		h.log.Warn("Terminating silent connection",
			"conn_id", session.ConnID,
			"member_id", session.MemberID,
			"last_seen", session.LastSeen)
		if session.Terminate != nil {
			session.Terminate()
		}
		h.disconnectLocked(ctx, session.ConnID)
		h.monitoring.IncrStaleConnections()
	}
	if idle := h.service.MarkIdleMembers(ctx, h.config.IdleAfter); len(idle) > 0 {
		h.log.Debug("Members marked idle", "count", len(idle))
	}
	return lo.Map(stale, func(s Session, _ int) string { return s.ConnID })
}

// ExpireQuestions times out the pending questions older than QuestionTimeout.
func (h *Hub) ExpireQuestions(ctx context.Context) []domain.QuestionID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.service.ExpireQuestions(ctx, h.config.QuestionTimeout)
}

// Consume delivers domain events to the live connections they concern.
// Delivery is best effort: nobody live means nothing is sent.
func (h *Hub) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MemberJoined:
		msg := &protocol.MemberJoined{Member: protocol.MemberInfo{
			MemberID:    evt.MemberID.String(),
			TeamID:      evt.Team.String(),
			TeamName:    evt.TeamName,
			DisplayName: evt.DisplayName,
			Status:      string(evt.Status),
		}}
		h.broadcast(evt.Team, msg, evt.MemberID)
	case event.MemberLeft:
		h.broadcast(evt.Team, &protocol.MemberLeft{MemberID: evt.MemberID.String(), TeamID: evt.Team.String()}, evt.MemberID)
	case event.QuestionAsked:
		h.deliverQuestion(evt)
	case event.QuestionAnswered:
		h.deliverAnswer(evt)
	case event.QuestionTimedOut:
		h.forgetAsk(evt.QuestionID)
		h.log.Info("Question timed out", "question_id", evt.QuestionID, "asker_id", evt.AskerMemberID, "team_id", evt.ToTeamID)
	}
	return nil
}

func (h *Hub) deliverQuestion(evt event.QuestionAsked) {
	question, err := h.service.Question(evt.QuestionID)
	if err != nil {
		h.log.Warn("Asked question vanished", "question_id", evt.QuestionID, "error", err)
		return
	}
	msg := &protocol.Question{
		QuestionID: question.ID.String(),
		From:       h.memberInfo(question.FromMemberID),
		Content:    question.Content.Text(),
		Format:     string(question.Content.Format()),
		CreatedAt:  question.CreatedAt,
	}
	if delivered := h.broadcast(question.ToTeamID, msg); delivered == 0 {
		h.log.Debug("No live member to deliver question", "question_id", question.ID, "team_id", question.ToTeamID)
	}
}

func (h *Hub) deliverAnswer(evt event.QuestionAnswered) {
	requestID := h.forgetAsk(evt.QuestionID)
	question, err := h.service.Question(evt.QuestionID)
	if err != nil {
		h.log.Warn("Answered question vanished", "question_id", evt.QuestionID, "error", err)
		return
	}
	answer, err := h.service.AnswerOf(question.ID)
	if err != nil {
		h.log.Warn("Answer vanished", "question_id", question.ID, "error", err)
		return
	}
	sink, ok := h.registry.SinkForMember(question.FromMemberID)
	if !ok {
		h.log.Debug("Asker gone, answer dropped", "question_id", question.ID, "asker_id", question.FromMemberID)
		return
	}
	h.send(sink, &protocol.Answer{
		QuestionID: question.ID.String(),
		From:       h.memberInfo(answer.FromMemberID),
		Content:    answer.Content.Text(),
		Format:     string(answer.Content.Format()),
		AnsweredAt: answer.CreatedAt,
		RequestID:  requestID,
	})
}

func (h *Hub) forgetAsk(questionID domain.QuestionID) string {
	h.reqMu.Lock()
	defer h.reqMu.Unlock()
	requestID := h.askRequests[questionID]
	delete(h.askRequests, questionID)
	return requestID
}

func (h *Hub) broadcast(teamID domain.TeamID, msg protocol.Message, except ...domain.MemberID) int {
	delivered := 0
	for _, sink := range h.registry.GetSinksForTeam(teamID, except...) {
		if h.send(sink, msg) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) memberInfo(memberID domain.MemberID) protocol.MemberInfo {
	info := protocol.MemberInfo{MemberID: memberID.String(), TeamName: "Unknown", DisplayName: "Unknown", Status: string(domain.StatusOffline)}
	member, err := h.service.Member(memberID)
	if err != nil {
		return info
	}
	info.TeamID = member.TeamID.String()
	info.DisplayName = member.DisplayName
	info.Status = string(member.Status)
	if team, err := h.service.Team(member.TeamID); err == nil {
		info.TeamName = team.Name
	}
	return info
}

func (h *Hub) send(sink contract.ConnectionSink, msg protocol.Message) bool {
	if err := sink.Send(msg); err != nil {
		h.monitoring.IncrDroppedPushes()
		h.log.Debug("Push dropped", "type", msg.MessageType(), "error", err)
		return false
	}
	h.monitoring.IncrFramesOut()
	return true
}

func (h *Hub) replyError(session Session, err error, requestID string) {
	h.monitoring.IncrErrorsSent()
	h.log.Debug("Replying with error", "conn_id", session.ConnID, "code", errors.CodeOf(err), "error", err)
	h.send(session.Sink, protocol.NewError(err, requestID))
}
