package runtime

import (
	"sync"
	"team-relay/contract"
	"team-relay/domain"
	"time"

	"github.com/samber/lo"
)

type Set map[domain.MemberID]struct{}

// Session is one live connection and, once joined, the member bound to it.
type Session struct {
	ConnID    string
	Sink      contract.ConnectionSink
	Terminate func()
	MemberID  domain.MemberID
	TeamID    domain.TeamID
	LastSeen  time.Time
}

func (s Session) Joined() bool { return !s.MemberID.IsZero() }

type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*Session        // connection -> session
	connections map[domain.MemberID]string // member -> connection
	teamMembers map[domain.TeamID]Set      // team -> live members
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		connections: make(map[domain.MemberID]string),
		teamMembers: make(map[domain.TeamID]Set),
	}
}

// Register adds a connection that has not joined any team yet.
func (r *Registry) Register(connID string, sink contract.ConnectionSink, terminate func(), now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = &Session{ConnID: connID, Sink: sink, Terminate: terminate, LastSeen: now}
}

// Remove forgets a connection and its binding. It reports false when the
// connection was already gone.
func (r *Registry) Remove(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	r.unbindLocked(session)
	delete(r.sessions, connID)
	return *session, true
}

// Bind attaches a member to a connection and its team.
func (r *Registry) Bind(connID string, memberID domain.MemberID, teamID domain.TeamID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[connID]
	if !ok {
		return false
	}
	r.unbindLocked(session)
	session.MemberID = memberID
	session.TeamID = teamID
	r.connections[memberID] = connID
	if _, ok := r.teamMembers[teamID]; !ok {
		r.teamMembers[teamID] = make(Set)
	}
	r.teamMembers[teamID][memberID] = struct{}{}
	return true
}

// Unbind detaches the member of a connection, keeping the connection live.
func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[connID]; ok {
		r.unbindLocked(session)
	}
}

func (r *Registry) unbindLocked(session *Session) {
	if !session.Joined() {
		return
	}
	delete(r.connections, session.MemberID)
	if members, ok := r.teamMembers[session.TeamID]; ok {
		delete(members, session.MemberID)
		// If no one is left in the team, remove the entry entirely
		if len(members) == 0 {
			delete(r.teamMembers, session.TeamID)
		}
	}
	session.MemberID = domain.MemberID{}
	session.TeamID = domain.TeamID{}
}

// Touch records inbound activity on a connection.
func (r *Registry) Touch(connID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[connID]; ok {
		session.LastSeen = now
	}
}

func (r *Registry) Session(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Stale returns the connections silent for longer than timeout.
func (r *Registry) Stale(now time.Time, timeout time.Duration) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.FilterMap(lo.Values(r.sessions), func(s *Session, _ int) (Session, bool) {
		return *s, now.Sub(s.LastSeen) > timeout
	})
}

// GetSinksForTeam resolves the live members of a team into their sinks.
// Returns nil if the team has no live member.
func (r *Registry) GetSinksForTeam(teamID domain.TeamID, except ...domain.MemberID) map[domain.MemberID]contract.ConnectionSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.teamMembers[teamID]
	if !ok {
		return nil
	}
	sinks := make(map[domain.MemberID]contract.ConnectionSink, len(members))
	for memberID := range members {
		if lo.Contains(except, memberID) {
			continue
		}
		if session, exists := r.sessions[r.connections[memberID]]; exists {
			sinks[memberID] = session.Sink
		}
	}
	return sinks
}

func (r *Registry) SinkForMember(memberID domain.MemberID) (contract.ConnectionSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.connections[memberID]
	if !ok {
		return nil, false
	}
	session, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	return session.Sink, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
