//go:generate go run go.uber.org/mock/mockgen -source=team.go -destination=../mocks/mock_team_repository.go -package=mocks
package repositories

import (
	"slices"
	"strings"
	"sync"
	"team-relay/domain"
	"team-relay/errors"
	"time"

	"github.com/samber/lo"
)

type ITeamRepository interface {
	Save(team *domain.Team) error
	FindByID(id domain.TeamID) (*domain.Team, error)
	GetOrCreate(name string, now time.Time) (*domain.Team, error)
	FindAll() []*domain.Team
}

// TeamRepository stores clones of teams. Teams are never deleted.
type TeamRepository struct {
	mu    sync.RWMutex
	teams map[domain.TeamID]*domain.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[domain.TeamID]*domain.Team)}
}

func (r *TeamRepository) Save(team *domain.Team) error {
	if team == nil || team.ID.IsZero() {
		return errors.Validation("cannot save a team without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams[team.ID] = team.Clone()
	return nil
}

func (r *TeamRepository) FindByID(id domain.TeamID) (*domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, errors.Newf(errors.CodeTeamNotFound, "team %s not found", id)
	}
	return team.Clone(), nil
}

// GetOrCreate resolves name to its normalized id and creates the team the
// first time that id is seen. The display name of an existing team is kept.
func (r *TeamRepository) GetOrCreate(name string, now time.Time) (*domain.Team, error) {
	candidate, err := domain.NewTeam(name, now)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.teams[candidate.ID]; ok {
		return existing.Clone(), nil
	}
	r.teams[candidate.ID] = candidate.Clone()
	return candidate, nil
}

func (r *TeamRepository) FindAll() []*domain.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	teams := lo.MapToSlice(r.teams, func(_ domain.TeamID, t *domain.Team) *domain.Team {
		return t.Clone()
	})
	slices.SortFunc(teams, func(a, b *domain.Team) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return teams
}
