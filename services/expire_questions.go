package services

import (
	"context"
	"team-relay/domain"
	"team-relay/domain/event"
	"team-relay/repositories"
	"time"

	"github.com/samber/lo"
)

type ExpireQuestions struct {
	questions repositories.IQuestionRepository
	events    emitter
	now       Clock
}

func NewExpireQuestions(questions repositories.IQuestionRepository, events emitter, now Clock) *ExpireQuestions {
	return &ExpireQuestions{questions: questions, events: events, now: now}
}

// Execute moves every pending question older than timeout to TIMEOUT.
// Askers are not notified, their own call times out on its own clock.
func (uc *ExpireQuestions) Execute(ctx context.Context, timeout time.Duration) []domain.QuestionID {
	now := uc.now()
	expired := lo.Filter(uc.questions.FindPending(), func(q *domain.Question, _ int) bool {
		return q.IsExpired(now, timeout)
	})

	ids := make([]domain.QuestionID, 0, len(expired))
	for _, q := range expired {
		q.MarkAsTimedOut()
		if err := uc.questions.Save(q); err != nil {
			uc.events.log.Warn("Failed to save expired question", "question_id", q.ID, "error", err)
			continue
		}
		ids = append(ids, q.ID)
		uc.events.emit(ctx, event.QuestionTimedOut{
			QuestionID:    q.ID,
			AskerMemberID: q.FromMemberID,
			ToTeamID:      q.ToTeamID,
			At:            now,
		})
	}
	return ids
}

type MarkIdleMembers struct {
	members repositories.IMemberRepository
	now     Clock
}

func NewMarkIdleMembers(members repositories.IMemberRepository, now Clock) *MarkIdleMembers {
	return &MarkIdleMembers{members: members, now: now}
}

// Execute marks IDLE the online members without activity for idleAfter.
func (uc *MarkIdleMembers) Execute(_ context.Context, idleAfter time.Duration) []domain.MemberID {
	now := uc.now()
	var idle []domain.MemberID
	for _, m := range uc.members.FindAll() {
		if m.Status != domain.StatusOnline || !m.IsInactiveSince(now, idleAfter) {
			continue
		}
		m.MarkIdle()
		if err := uc.members.Save(m); err != nil {
			continue
		}
		idle = append(idle, m.ID)
	}
	return idle
}
