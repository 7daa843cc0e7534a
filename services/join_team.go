package services

import (
	"context"
	"fmt"
	"strings"
	"team-relay/domain"
	"team-relay/domain/event"
	"team-relay/errors"
	"team-relay/repositories"
)

type JoinTeamInput struct {
	TeamName    string
	DisplayName string
}

// Validate reports the errors Execute would fail with before any write.
func (in JoinTeamInput) Validate() error {
	if strings.TrimSpace(in.TeamName) == "" {
		return errors.Validation("team name must not be empty")
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return errors.Validation("display name must not be empty")
	}
	_, err := domain.NewTeamID(in.TeamName)
	return err
}

type JoinTeamOutput struct {
	MemberID    domain.MemberID
	TeamID      domain.TeamID
	TeamName    string
	DisplayName string
	Status      domain.MemberStatus
	MemberCount int
}

type JoinTeam struct {
	teams   repositories.ITeamRepository
	members repositories.IMemberRepository
	events  emitter
	now     Clock
}

func NewJoinTeam(teams repositories.ITeamRepository, members repositories.IMemberRepository, events emitter, now Clock) *JoinTeam {
	return &JoinTeam{teams: teams, members: members, events: events, now: now}
}

// Execute creates an ONLINE member in the team named input.TeamName,
// creating the team on first use.
func (uc *JoinTeam) Execute(ctx context.Context, input JoinTeamInput) (JoinTeamOutput, error) {
	if err := input.Validate(); err != nil {
		return JoinTeamOutput{}, err
	}
	now := uc.now()

	team, err := uc.teams.GetOrCreate(input.TeamName, now)
	if err != nil {
		return JoinTeamOutput{}, err
	}
	member, err := domain.NewMember(domain.NewMemberID(), team.ID, input.DisplayName, now)
	if err != nil {
		return JoinTeamOutput{}, err
	}
	if err = uc.members.Save(member); err != nil {
		return JoinTeamOutput{}, fmt.Errorf("save member: %w", err)
	}
	team.AddMember(member.ID)
	if err = uc.teams.Save(team); err != nil {
		return JoinTeamOutput{}, fmt.Errorf("save team: %w", err)
	}

	uc.events.emit(ctx, event.MemberJoined{
		MemberID:    member.ID,
		Team:        team.ID,
		TeamName:    team.Name,
		DisplayName: member.DisplayName,
		Status:      member.Status,
		MemberCount: team.MemberCount(),
		At:          now,
	})

	return JoinTeamOutput{
		MemberID:    member.ID,
		TeamID:      team.ID,
		TeamName:    team.Name,
		DisplayName: member.DisplayName,
		Status:      member.Status,
		MemberCount: team.MemberCount(),
	}, nil
}
