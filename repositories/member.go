//go:generate go run go.uber.org/mock/mockgen -source=member.go -destination=../mocks/mock_member_repository.go -package=mocks
package repositories

import (
	"slices"
	"strings"
	"sync"
	"team-relay/domain"
	"team-relay/errors"

	"github.com/samber/lo"
)

type IMemberRepository interface {
	Save(member *domain.Member) error
	FindByID(id domain.MemberID) (*domain.Member, error)
	FindByTeam(teamID domain.TeamID) []*domain.Member
	FindAll() []*domain.Member
	Delete(id domain.MemberID) error
}

// MemberRepository keeps members in memory. Members go in and come out
// as copies, callers never share state with the store.
type MemberRepository struct {
	mu      sync.RWMutex
	members map[domain.MemberID]domain.Member
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{members: make(map[domain.MemberID]domain.Member)}
}

func (r *MemberRepository) Save(member *domain.Member) error {
	if member == nil || member.ID.IsZero() {
		return errors.Validation("cannot save a member without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = *member
	return nil
}

func (r *MemberRepository) FindByID(id domain.MemberID) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[id]
	if !ok {
		return nil, errors.Newf(errors.CodeMemberNotFound, "member %s not found", id)
	}
	return lo.ToPtr(member), nil
}

func (r *MemberRepository) FindByTeam(teamID domain.TeamID) []*domain.Member {
	return r.filter(func(m domain.Member) bool { return m.TeamID == teamID })
}

func (r *MemberRepository) FindAll() []*domain.Member {
	return r.filter(func(domain.Member) bool { return true })
}

func (r *MemberRepository) Delete(id domain.MemberID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return errors.Newf(errors.CodeMemberNotFound, "member %s not found", id)
	}
	delete(r.members, id)
	return nil
}

// filter returns the matching members ordered by connection time, then id.
func (r *MemberRepository) filter(keep func(domain.Member) bool) []*domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matching := lo.FilterMap(lo.Values(r.members), func(m domain.Member, _ int) (*domain.Member, bool) {
		return lo.ToPtr(m), keep(m)
	})
	slices.SortFunc(matching, func(a, b *domain.Member) int {
		if c := a.ConnectedAt.Compare(b.ConnectedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return matching
}
