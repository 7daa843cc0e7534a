package services

import (
	"context"
	"fmt"
	"team-relay/domain"
	"team-relay/domain/event"
	"team-relay/errors"
	"team-relay/repositories"
	"time"
)

type ReplyQuestionInput struct {
	QuestionID   domain.QuestionID
	FromMemberID domain.MemberID
	Content      string
	Format       domain.ContentFormat
}

type ReplyQuestionOutput struct {
	AnswerID            domain.AnswerID
	QuestionID          domain.QuestionID
	DeliveredToMemberID domain.MemberID
	CreatedAt           time.Time
}

type ReplyQuestion struct {
	members          repositories.IMemberRepository
	questions        repositories.IQuestionRepository
	answers          repositories.IAnswerRepository
	events           emitter
	now              Clock
	maxContentLength int
}

func NewReplyQuestion(
	members repositories.IMemberRepository,
	questions repositories.IQuestionRepository,
	answers repositories.IAnswerRepository,
	events emitter,
	now Clock,
	maxContentLength int,
) *ReplyQuestion {
	return &ReplyQuestion{
		members:          members,
		questions:        questions,
		answers:          answers,
		events:           events,
		now:              now,
		maxContentLength: maxContentLength,
	}
}

// Execute answers a pending question. The answer and the question are
// saved one after the other, a failure in between is not rolled back.
func (uc *ReplyQuestion) Execute(ctx context.Context, input ReplyQuestionInput) (ReplyQuestionOutput, error) {
	replier, err := uc.members.FindByID(input.FromMemberID)
	if err != nil {
		return ReplyQuestionOutput{}, err
	}
	question, err := uc.questions.FindByID(input.QuestionID)
	if err != nil {
		return ReplyQuestionOutput{}, err
	}
	if !question.CanBeAnswered() {
		return ReplyQuestionOutput{}, errors.Newf(errors.CodeAlreadyAnswered,
			"question %s is %s and cannot be answered", question.ID, question.Status)
	}
	content, err := domain.NewMessageContent(input.Content, input.Format, uc.maxContentLength)
	if err != nil {
		return ReplyQuestionOutput{}, err
	}

	now := uc.now()
	answer := domain.NewAnswer(domain.NewAnswerID(), question.ID, replier.ID, content, now)
	if err = question.MarkAsAnswered(replier.ID, now); err != nil {
		return ReplyQuestionOutput{}, err
	}
	if err = uc.answers.Save(answer); err != nil {
		return ReplyQuestionOutput{}, fmt.Errorf("save answer: %w", err)
	}
	if err = uc.questions.Save(question); err != nil {
		return ReplyQuestionOutput{}, fmt.Errorf("save question: %w", err)
	}
	replier.RecordActivity(now)
	if err = uc.members.Save(replier); err != nil {
		return ReplyQuestionOutput{}, fmt.Errorf("save replier activity: %w", err)
	}

	uc.events.emit(ctx, event.QuestionAnswered{
		QuestionID:    question.ID,
		AnswerID:      answer.ID,
		FromMemberID:  replier.ID,
		AskerMemberID: question.FromMemberID,
		ToTeamID:      question.ToTeamID,
		At:            now,
	})

	return ReplyQuestionOutput{
		AnswerID:            answer.ID,
		QuestionID:          question.ID,
		DeliveredToMemberID: question.FromMemberID,
		CreatedAt:           now,
	}, nil
}
