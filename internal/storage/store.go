package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/quizsmith/quizsmith/internal/quiz"
)

var ErrNotFound = errors.New("not found")

// Store persists quizzes and attempts. Grading happens on submit; a stored
// question is treated as immutable; edits replace the whole record.
type Store interface {
	PutQuiz(ctx context.Context, q *quiz.Quiz) error
	GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error)
	ListQuizzes(ctx context.Context) ([]quiz.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	NewAttempt(ctx context.Context, quizID, userID string) (*quiz.Attempt, error)
	SaveAnswers(ctx context.Context, attemptID string, answers map[string]json.RawMessage) (*quiz.Attempt, error)
	Submit(ctx context.Context, attemptID string, timeSpentSec int) (*quiz.Attempt, error)
	GetAttempt(ctx context.Context, id string) (*quiz.Attempt, error)
}
