package event

import (
	"team-relay/domain"
	"time"
)

// DomainEvent is emitted by a use case once its writes are recorded.
type DomainEvent interface {
	TeamID() domain.TeamID
}

type MemberJoined struct {
	MemberID    domain.MemberID
	Team        domain.TeamID
	TeamName    string
	DisplayName string
	Status      domain.MemberStatus
	MemberCount int
	At          time.Time
}

func (e MemberJoined) TeamID() domain.TeamID { return e.Team }

type MemberLeft struct {
	MemberID    domain.MemberID
	Team        domain.TeamID
	DisplayName string
	At          time.Time
}

func (e MemberLeft) TeamID() domain.TeamID { return e.Team }

type QuestionAsked struct {
	QuestionID   domain.QuestionID
	FromMemberID domain.MemberID
	ToTeamID     domain.TeamID
	At           time.Time
}

func (e QuestionAsked) TeamID() domain.TeamID { return e.ToTeamID }

type QuestionAnswered struct {
	QuestionID    domain.QuestionID
	AnswerID      domain.AnswerID
	FromMemberID  domain.MemberID
	AskerMemberID domain.MemberID
	ToTeamID      domain.TeamID
	At            time.Time
}

func (e QuestionAnswered) TeamID() domain.TeamID { return e.ToTeamID }

// QuestionTimedOut is informational: the asker is not notified.
type QuestionTimedOut struct {
	QuestionID    domain.QuestionID
	AskerMemberID domain.MemberID
	ToTeamID      domain.TeamID
	At            time.Time
}

func (e QuestionTimedOut) TeamID() domain.TeamID { return e.ToTeamID }
