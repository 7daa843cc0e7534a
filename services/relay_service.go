package services

import (
	"context"
	"log/slog"
	"team-relay/contract"
	"team-relay/domain"
	"team-relay/domain/event"
	"team-relay/repositories"
	"team-relay/sink"
	"time"
)

// Clock returns the current time. Use cases never read the wall clock directly.
type Clock func() time.Time

func UTCClock() time.Time { return time.Now().UTC() }

type IRelayService interface {
	JoinTeam(ctx context.Context, input JoinTeamInput) (JoinTeamOutput, error)
	AskQuestion(ctx context.Context, input AskQuestionInput) (AskQuestionOutput, error)
	GetInbox(ctx context.Context, input GetInboxInput) (Inbox, error)
	ReplyQuestion(ctx context.Context, input ReplyQuestionInput) (ReplyQuestionOutput, error)
	LeaveTeam(ctx context.Context, memberID domain.MemberID) (LeaveTeamOutput, error)
	ExpireQuestions(ctx context.Context, timeout time.Duration) []domain.QuestionID
	MarkIdleMembers(ctx context.Context, idleAfter time.Duration) []domain.MemberID
	Member(id domain.MemberID) (*domain.Member, error)
	Team(id domain.TeamID) (*domain.Team, error)
	Question(id domain.QuestionID) (*domain.Question, error)
	AnswerOf(questionID domain.QuestionID) (*domain.Answer, error)
}

type Repositories struct {
	Members   repositories.IMemberRepository
	Teams     repositories.ITeamRepository
	Questions repositories.IQuestionRepository
	Answers   repositories.IAnswerRepository
}

func NewInMemoryRepositories() Repositories {
	return Repositories{
		Members:   repositories.NewMemberRepository(),
		Teams:     repositories.NewTeamRepository(),
		Questions: repositories.NewQuestionRepository(),
		Answers:   repositories.NewAnswerRepository(),
	}
}

// RelayService groups the use cases over one set of repositories and
// the read lookups the hub needs for delivery.
type RelayService struct {
	repos         Repositories
	joinTeam      *JoinTeam
	askQuestion   *AskQuestion
	getInbox      *GetInbox
	replyQuestion *ReplyQuestion
	leaveTeam     *LeaveTeam
	expire        *ExpireQuestions
	markIdle      *MarkIdleMembers
}

// NewRelayService wires every use case to eventSink. A nil eventSink
// drops events, a nil clock uses UTC wall time and a non positive
// maxContentLength uses domain.DefaultMaxContentLength.
func NewRelayService(
	log *slog.Logger,
	repos Repositories,
	eventSink contract.EventSink,
	clock Clock,
	maxContentLength int,
) *RelayService {
	if eventSink == nil {
		eventSink = sink.NewNoopSink()
	}
	if clock == nil {
		clock = UTCClock
	}
	if maxContentLength <= 0 {
		maxContentLength = domain.DefaultMaxContentLength
	}
	e := emitter{log: log, sink: eventSink}
	return &RelayService{
		repos:         repos,
		joinTeam:      NewJoinTeam(repos.Teams, repos.Members, e, clock),
		askQuestion:   NewAskQuestion(repos.Members, repos.Teams, repos.Questions, e, clock, maxContentLength),
		getInbox:      NewGetInbox(repos.Members, repos.Teams, repos.Questions, clock),
		replyQuestion: NewReplyQuestion(repos.Members, repos.Questions, repos.Answers, e, clock, maxContentLength),
		leaveTeam:     NewLeaveTeam(repos.Members, repos.Teams, e, clock),
		expire:        NewExpireQuestions(repos.Questions, e, clock),
		markIdle:      NewMarkIdleMembers(repos.Members, clock),
	}
}

func (s *RelayService) JoinTeam(ctx context.Context, input JoinTeamInput) (JoinTeamOutput, error) {
	return s.joinTeam.Execute(ctx, input)
}

func (s *RelayService) AskQuestion(ctx context.Context, input AskQuestionInput) (AskQuestionOutput, error) {
	return s.askQuestion.Execute(ctx, input)
}

func (s *RelayService) GetInbox(ctx context.Context, input GetInboxInput) (Inbox, error) {
	return s.getInbox.Execute(ctx, input)
}

func (s *RelayService) ReplyQuestion(ctx context.Context, input ReplyQuestionInput) (ReplyQuestionOutput, error) {
	return s.replyQuestion.Execute(ctx, input)
}

func (s *RelayService) LeaveTeam(ctx context.Context, memberID domain.MemberID) (LeaveTeamOutput, error) {
	return s.leaveTeam.Execute(ctx, memberID)
}

func (s *RelayService) ExpireQuestions(ctx context.Context, timeout time.Duration) []domain.QuestionID {
	return s.expire.Execute(ctx, timeout)
}

func (s *RelayService) MarkIdleMembers(ctx context.Context, idleAfter time.Duration) []domain.MemberID {
	return s.markIdle.Execute(ctx, idleAfter)
}

func (s *RelayService) Member(id domain.MemberID) (*domain.Member, error) {
	return s.repos.Members.FindByID(id)
}

func (s *RelayService) Team(id domain.TeamID) (*domain.Team, error) {
	return s.repos.Teams.FindByID(id)
}

func (s *RelayService) Question(id domain.QuestionID) (*domain.Question, error) {
	return s.repos.Questions.FindByID(id)
}

func (s *RelayService) AnswerOf(questionID domain.QuestionID) (*domain.Answer, error) {
	return s.repos.Answers.FindByQuestion(questionID)
}

// emitter hands events to the sink once the writes are done. A sink
// failure is logged, the use case has already succeeded.
type emitter struct {
	log  *slog.Logger
	sink contract.EventSink
}

func (e emitter) emit(ctx context.Context, evt event.DomainEvent) {
	if err := e.sink.Consume(ctx, evt); err != nil {
		e.log.Warn("Event delivery failed", "event", evt, "error", err)
	}
}
