package domain

import (
	"maps"
	"slices"
	"strings"
	"team-relay/errors"
	"time"
)

// Team is a named channel, the addressing unit for questions.
type Team struct {
	ID        TeamID
	Name      string
	CreatedAt time.Time
	members   map[MemberID]struct{}
}

func NewTeam(name string, now time.Time) (*Team, error) {
	display := strings.TrimSpace(name)
	if display == "" {
		return nil, errors.Validation("team name must not be empty")
	}
	id, err := NewTeamID(display)
	if err != nil {
		return nil, err
	}
	return &Team{
		ID:        id,
		Name:      display,
		CreatedAt: now,
		members:   make(map[MemberID]struct{}),
	}, nil
}

func (t *Team) AddMember(id MemberID) {
	if t.members == nil {
		t.members = make(map[MemberID]struct{})
	}
	t.members[id] = struct{}{}
}

func (t *Team) RemoveMember(id MemberID) {
	delete(t.members, id)
}

func (t *Team) HasMember(id MemberID) bool {
	_, ok := t.members[id]
	return ok
}

func (t *Team) MemberCount() int {
	return len(t.members)
}

// MemberIDs returns the members sorted by id, for stable iteration.
func (t *Team) MemberIDs() []MemberID {
	ids := slices.Collect(maps.Keys(t.members))
	slices.SortFunc(ids, func(a, b MemberID) int { return strings.Compare(a.value, b.value) })
	return ids
}

// Clone returns a copy that does not share the member set.
func (t *Team) Clone() *Team {
	c := *t
	c.members = maps.Clone(t.members)
	if c.members == nil {
		c.members = make(map[MemberID]struct{})
	}
	return &c
}
