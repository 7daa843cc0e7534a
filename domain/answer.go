package domain

import "time"

// Answer is the single response resolving a Question. It never changes
// once created.
type Answer struct {
	ID           AnswerID
	QuestionID   QuestionID
	FromMemberID MemberID
	Content      MessageContent
	CreatedAt    time.Time
}

func NewAnswer(id AnswerID, questionID QuestionID, from MemberID, content MessageContent, now time.Time) *Answer {
	return &Answer{
		ID:           id,
		QuestionID:   questionID,
		FromMemberID: from,
		Content:      content,
		CreatedAt:    now,
	}
}
