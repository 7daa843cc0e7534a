package domain

import (
	"strings"
	"team-relay/errors"
	"time"
)

type MemberStatus string

const (
	StatusOnline  MemberStatus = "ONLINE"
	StatusIdle    MemberStatus = "IDLE"
	StatusOffline MemberStatus = "OFFLINE"
)

// Member is one connected participant, bound to a single team.
type Member struct {
	ID           MemberID
	TeamID       TeamID
	DisplayName  string
	ConnectedAt  time.Time
	Status       MemberStatus
	LastActivity time.Time
}

func NewMember(id MemberID, teamID TeamID, displayName string, now time.Time) (*Member, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, errors.Validation("display name must not be empty")
	}
	return &Member{
		ID:           id,
		TeamID:       teamID,
		DisplayName:  name,
		ConnectedAt:  now,
		Status:       StatusOnline,
		LastActivity: now,
	}, nil
}

// RecordActivity brings the member back online.
func (m *Member) RecordActivity(now time.Time) {
	m.Status = StatusOnline
	m.LastActivity = now
}

// MarkIdle only applies to online members.
func (m *Member) MarkIdle() {
	if m.Status == StatusOnline {
		m.Status = StatusIdle
	}
}

func (m *Member) MarkOffline(now time.Time) {
	m.Status = StatusOffline
	m.LastActivity = now
}

func (m *Member) IsInactiveSince(now time.Time, after time.Duration) bool {
	return now.Sub(m.LastActivity) > after
}
