//go:generate go run go.uber.org/mock/mockgen -source=question.go -destination=../mocks/mock_question_repository.go -package=mocks
package repositories

import (
	"slices"
	"strings"
	"sync"
	"team-relay/domain"
	"team-relay/errors"

	"github.com/samber/lo"
)

type IQuestionRepository interface {
	Save(question *domain.Question) error
	FindByID(id domain.QuestionID) (*domain.Question, error)
	// FindByTeam returns the questions addressed to teamID, oldest first.
	// Only pending questions are returned unless includeAnswered is set.
	FindByTeam(teamID domain.TeamID, includeAnswered bool) []*domain.Question
	FindPending() []*domain.Question
}

type QuestionRepository struct {
	mu        sync.RWMutex
	questions map[domain.QuestionID]domain.Question
}

func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{questions: make(map[domain.QuestionID]domain.Question)}
}

func (r *QuestionRepository) Save(question *domain.Question) error {
	if question == nil || question.ID.IsZero() {
		return errors.Validation("cannot save a question without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[question.ID] = *question
	return nil
}

func (r *QuestionRepository) FindByID(id domain.QuestionID) (*domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	question, ok := r.questions[id]
	if !ok {
		return nil, errors.Newf(errors.CodeQuestionNotFound, "question %s not found", id)
	}
	return lo.ToPtr(question), nil
}

func (r *QuestionRepository) FindByTeam(teamID domain.TeamID, includeAnswered bool) []*domain.Question {
	return r.filter(func(q domain.Question) bool {
		return q.ToTeamID == teamID && (includeAnswered || q.IsPending())
	})
}

func (r *QuestionRepository) FindPending() []*domain.Question {
	return r.filter(func(q domain.Question) bool { return q.IsPending() })
}

func (r *QuestionRepository) filter(keep func(domain.Question) bool) []*domain.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matching := lo.FilterMap(lo.Values(r.questions), func(q domain.Question, _ int) (*domain.Question, bool) {
		return lo.ToPtr(q), keep(q)
	})
	slices.SortFunc(matching, func(a, b *domain.Question) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return matching
}
