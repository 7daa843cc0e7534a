//go:generate go run go.uber.org/mock/mockgen -source=answer.go -destination=../mocks/mock_answer_repository.go -package=mocks
package repositories

import (
	"sync"
	"team-relay/domain"
	"team-relay/errors"

	"github.com/samber/lo"
)

type IAnswerRepository interface {
	Save(answer *domain.Answer) error
	FindByID(id domain.AnswerID) (*domain.Answer, error)
	FindByQuestion(questionID domain.QuestionID) (*domain.Answer, error)
}

// AnswerRepository does not check that a question has a single answer,
// that is the question's job.
type AnswerRepository struct {
	mu         sync.RWMutex
	answers    map[domain.AnswerID]domain.Answer
	byQuestion map[domain.QuestionID]domain.AnswerID
}

func NewAnswerRepository() *AnswerRepository {
	return &AnswerRepository{
		answers:    make(map[domain.AnswerID]domain.Answer),
		byQuestion: make(map[domain.QuestionID]domain.AnswerID),
	}
}

func (r *AnswerRepository) Save(answer *domain.Answer) error {
	if answer == nil || answer.ID.IsZero() {
		return errors.Validation("cannot save an answer without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers[answer.ID] = *answer
	r.byQuestion[answer.QuestionID] = answer.ID
	return nil
}

func (r *AnswerRepository) FindByID(id domain.AnswerID) (*domain.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	answer, ok := r.answers[id]
	if !ok {
		return nil, errors.Newf(errors.CodeAnswerNotFound, "answer %s not found", id)
	}
	return lo.ToPtr(answer), nil
}

func (r *AnswerRepository) FindByQuestion(questionID domain.QuestionID) (*domain.Answer, error) {
	r.mu.RLock()
	id, ok := r.byQuestion[questionID]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.CodeAnswerNotFound, "no answer for question %s", questionID)
	}
	return r.FindByID(id)
}
