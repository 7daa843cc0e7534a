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

type AskQuestionInput struct {
	FromMemberID domain.MemberID
	ToTeamName   string
	Content      string
	Format       domain.ContentFormat
}

type AskQuestionOutput struct {
	QuestionID domain.QuestionID
	ToTeamID   domain.TeamID
	Status     domain.QuestionStatus
	CreatedAt  time.Time
}

type AskQuestion struct {
	members          repositories.IMemberRepository
	teams            repositories.ITeamRepository
	questions        repositories.IQuestionRepository
	events           emitter
	now              Clock
	maxContentLength int
}

func NewAskQuestion(
	members repositories.IMemberRepository,
	teams repositories.ITeamRepository,
	questions repositories.IQuestionRepository,
	events emitter,
	now Clock,
	maxContentLength int,
) *AskQuestion {
	return &AskQuestion{
		members:          members,
		teams:            teams,
		questions:        questions,
		events:           events,
		now:              now,
		maxContentLength: maxContentLength,
	}
}

// Execute records a PENDING question from a member to another team.
func (uc *AskQuestion) Execute(ctx context.Context, input AskQuestionInput) (AskQuestionOutput, error) {
	asker, err := uc.members.FindByID(input.FromMemberID)
	if err != nil {
		return AskQuestionOutput{}, err
	}
	teamID, err := domain.NewTeamID(input.ToTeamName)
	if err != nil {
		return AskQuestionOutput{}, err
	}
	team, err := uc.teams.FindByID(teamID)
	if err != nil {
		return AskQuestionOutput{}, err
	}
	if team.ID == asker.TeamID {
		return AskQuestionOutput{}, errors.Validation("cannot ask your own team %q", team.Name)
	}
	content, err := domain.NewMessageContent(input.Content, input.Format, uc.maxContentLength)
	if err != nil {
		return AskQuestionOutput{}, err
	}

	now := uc.now()
	question := domain.NewQuestion(domain.NewQuestionID(), asker.ID, team.ID, content, now)
	if err = uc.questions.Save(question); err != nil {
		return AskQuestionOutput{}, fmt.Errorf("save question: %w", err)
	}
	asker.RecordActivity(now)
	if err = uc.members.Save(asker); err != nil {
		return AskQuestionOutput{}, fmt.Errorf("save asker activity: %w", err)
	}

	uc.events.emit(ctx, event.QuestionAsked{
		QuestionID:   question.ID,
		FromMemberID: asker.ID,
		ToTeamID:     team.ID,
		At:           now,
	})

	return AskQuestionOutput{
		QuestionID: question.ID,
		ToTeamID:   team.ID,
		Status:     question.Status,
		CreatedAt:  question.CreatedAt,
	}, nil
}
