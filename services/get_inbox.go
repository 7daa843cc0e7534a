package services

import (
	"context"
	"slices"
	"team-relay/domain"
	"team-relay/repositories"
	"time"

	"github.com/samber/lo"
)

const unknown = "Unknown"

type GetInboxInput struct {
	MemberID        domain.MemberID
	TeamID          domain.TeamID
	IncludeAnswered bool
}

type InboxItem struct {
	QuestionID      domain.QuestionID
	FromMemberID    domain.MemberID
	FromDisplayName string
	FromTeamID      domain.TeamID
	FromTeamName    string
	FromStatus      domain.MemberStatus
	Content         domain.MessageContent
	Status          domain.QuestionStatus
	CreatedAt       time.Time
	Age             time.Duration
}

type Inbox struct {
	TeamID       domain.TeamID
	TeamName     string
	Questions    []InboxItem
	TotalCount   int
	PendingCount int
}

type GetInbox struct {
	members   repositories.IMemberRepository
	teams     repositories.ITeamRepository
	questions repositories.IQuestionRepository
	now       Clock
}

func NewGetInbox(
	members repositories.IMemberRepository,
	teams repositories.ITeamRepository,
	questions repositories.IQuestionRepository,
	now Clock,
) *GetInbox {
	return &GetInbox{members: members, teams: teams, questions: questions, now: now}
}

// Execute lists the questions addressed to a team, newest first. Asker
// lookups that fail resolve to "Unknown" instead of failing the call.
func (uc *GetInbox) Execute(_ context.Context, input GetInboxInput) (Inbox, error) {
	if _, err := uc.members.FindByID(input.MemberID); err != nil {
		return Inbox{}, err
	}
	team, err := uc.teams.FindByID(input.TeamID)
	if err != nil {
		return Inbox{}, err
	}

	now := uc.now()
	all := uc.questions.FindByTeam(team.ID, true)
	listed := all
	if !input.IncludeAnswered {
		listed = lo.Filter(all, func(q *domain.Question, _ int) bool { return q.IsPending() })
	}

	items := lo.Map(listed, func(q *domain.Question, _ int) InboxItem {
		return uc.toItem(q, now)
	})
	slices.SortStableFunc(items, func(a, b InboxItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return Inbox{
		TeamID:       team.ID,
		TeamName:     team.Name,
		Questions:    items,
		TotalCount:   len(items),
		PendingCount: lo.CountBy(all, func(q *domain.Question) bool { return q.IsPending() }),
	}, nil
}

func (uc *GetInbox) toItem(q *domain.Question, now time.Time) InboxItem {
	item := InboxItem{
		QuestionID:      q.ID,
		FromMemberID:    q.FromMemberID,
		FromDisplayName: unknown,
		FromTeamName:    unknown,
		FromStatus:      domain.StatusOffline,
		Content:         q.Content,
		Status:          q.Status,
		CreatedAt:       q.CreatedAt,
		Age:             q.Age(now),
	}
	asker, err := uc.members.FindByID(q.FromMemberID)
	if err != nil {
		return item
	}
	item.FromDisplayName = asker.DisplayName
	item.FromTeamID = asker.TeamID
	item.FromStatus = asker.Status
	if team, err := uc.teams.FindByID(asker.TeamID); err == nil {
		item.FromTeamName = team.Name
	}
	return item
}
