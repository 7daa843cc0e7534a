package services

import (
	"context"
	"fmt"
	"team-relay/domain"
	"team-relay/domain/event"
	"team-relay/errors"
	"team-relay/repositories"
)

type LeaveTeamOutput struct {
	MemberID       domain.MemberID
	TeamID         domain.TeamID
	RemainingCount int
}

type LeaveTeam struct {
	members repositories.IMemberRepository
	teams   repositories.ITeamRepository
	events  emitter
	now     Clock
}

func NewLeaveTeam(members repositories.IMemberRepository, teams repositories.ITeamRepository, events emitter, now Clock) *LeaveTeam {
	return &LeaveTeam{members: members, teams: teams, events: events, now: now}
}

// Execute marks the member OFFLINE, takes it out of its team and forgets it.
func (uc *LeaveTeam) Execute(ctx context.Context, memberID domain.MemberID) (LeaveTeamOutput, error) {
	member, err := uc.members.FindByID(memberID)
	if err != nil {
		return LeaveTeamOutput{}, err
	}
	now := uc.now()
	member.MarkOffline(now)

	remaining := 0
	team, err := uc.teams.FindByID(member.TeamID)
	switch {
	case err == nil:
		team.RemoveMember(member.ID)
		if err = uc.teams.Save(team); err != nil {
			return LeaveTeamOutput{}, fmt.Errorf("save team: %w", err)
		}
		remaining = team.MemberCount()
	case !errors.IsNotFound(err):
		return LeaveTeamOutput{}, err
	}

	if err = uc.members.Delete(member.ID); err != nil {
		return LeaveTeamOutput{}, err
	}

	uc.events.emit(ctx, event.MemberLeft{
		MemberID:    member.ID,
		Team:        member.TeamID,
		DisplayName: member.DisplayName,
		At:          now,
	})

	return LeaveTeamOutput{MemberID: member.ID, TeamID: member.TeamID, RemainingCount: remaining}, nil
}
