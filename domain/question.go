package domain

import (
	"team-relay/errors"
	"time"
)

type QuestionStatus string

const (
	QuestionPending   QuestionStatus = "PENDING"
	QuestionAnswered  QuestionStatus = "ANSWERED"
	QuestionTimeout   QuestionStatus = "TIMEOUT"
	QuestionCancelled QuestionStatus = "CANCELLED"
)

// Question is addressed to a team and waits for a single answer.
// Its status leaves PENDING exactly once; every other status is terminal.
type Question struct {
	ID                 QuestionID
	FromMemberID       MemberID
	ToTeamID           TeamID
	Content            MessageContent
	CreatedAt          time.Time
	Status             QuestionStatus
	AnsweredAt         time.Time
	AnsweredByMemberID MemberID
}

func NewQuestion(id QuestionID, from MemberID, to TeamID, content MessageContent, now time.Time) *Question {
	return &Question{
		ID:           id,
		FromMemberID: from,
		ToTeamID:     to,
		Content:      content,
		CreatedAt:    now,
		Status:       QuestionPending,
	}
}

func (q *Question) IsPending() bool {
	return q.Status == QuestionPending
}

func (q *Question) CanBeAnswered() bool {
	return q.IsPending()
}

func (q *Question) MarkAsAnswered(by MemberID, at time.Time) error {
	if !q.CanBeAnswered() {
		return errors.Newf(errors.CodeAlreadyAnswered, "question %s is %s", q.ID, q.Status)
	}
	q.Status = QuestionAnswered
	q.AnsweredAt = at
	q.AnsweredByMemberID = by
	return nil
}

func (q *Question) MarkAsTimedOut() {
	if q.IsPending() {
		q.Status = QuestionTimeout
	}
}

func (q *Question) MarkAsCancelled() {
	if q.IsPending() {
		q.Status = QuestionCancelled
	}
}

// IsExpired reports whether a pending question has waited longer than timeout.
func (q *Question) IsExpired(now time.Time, timeout time.Duration) bool {
	return q.IsPending() && now.Sub(q.CreatedAt) > timeout
}

func (q *Question) Age(now time.Time) time.Duration {
	return now.Sub(q.CreatedAt)
}
