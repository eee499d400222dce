package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizsmith/quizsmith/internal/grading"
	"github.com/quizsmith/quizsmith/internal/quiz"
)

// SQLStore works against both supported drivers; questions and answers are
// stored as JSON columns, as the schema in internal/db lays out.
type SQLStore struct {
	db     *sql.DB
	grader *grading.Grader
}

func NewSQLStore(db *sql.DB, grader *grading.Grader) *SQLStore {
	return &SQLStore{db: db, grader: grader}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q *quiz.Quiz) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,topic,description,time_limit_min,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, topic=EXCLUDED.topic,
			description=EXCLUDED.description, time_limit_min=EXCLUDED.time_limit_min,
			questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.Topic, q.Description, q.TimeLimitMin, string(qj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,topic,description,time_limit_min,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	var q quiz.Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.Title, &q.Topic, &q.Description, &q.TimeLimitMin, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of quiz %s: %w", id, err)
	}
	return &q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,topic,description,time_limit_min,created_at
		FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quiz.Quiz
	for rows.Next() {
		var q quiz.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Topic, &q.Description, &q.TimeLimitMin, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) NewAttempt(ctx context.Context, quizID, userID string) (*quiz.Attempt, error) {
	qz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	a := &quiz.Attempt{
		ID:          uuid.NewString(),
		QuizID:      qz.ID,
		UserID:      userID,
		Status:      "in_progress",
		Answers:     map[string]json.RawMessage{},
		TotalPoints: qz.TotalPoints(),
		StartedAt:   time.Now().Unix(),
	}
	aj, _ := json.Marshal(a.Answers)
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,user_id,status,score,total_points,answers_json,time_spent_sec,started_at)
		VALUES ($1,$2,$3,$4,0,$5,$6,0,$7)`,
		a.ID, a.QuizID, a.UserID, a.Status, a.TotalPoints, string(aj), a.StartedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLStore) SaveAnswers(ctx context.Context, attemptID string, answers map[string]json.RawMessage) (*quiz.Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status == "submitted" {
		return nil, errors.New("attempt already submitted")
	}
	if a.Answers == nil {
		a.Answers = map[string]json.RawMessage{}
	}
	for k, v := range answers {
		a.Answers[k] = v
	}
	buf, _ := json.Marshal(a.Answers)
	if _, err := s.db.ExecContext(ctx, `UPDATE attempts SET answers_json=$1 WHERE id=$2`, string(buf), attemptID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLStore) Submit(ctx context.Context, attemptID string, timeSpentSec int) (*quiz.Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status == "submitted" {
		return a, nil
	}
	qz, err := s.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return nil, err
	}

	s.grader.ScoreAttempt(qz, a)
	a.Status = "submitted"
	a.TimeSpentSec = timeSpentSec
	a.SubmittedAt = time.Now().Unix()

	_, err = s.db.ExecContext(ctx, `UPDATE attempts SET status='submitted', score=$1, total_points=$2,
		time_spent_sec=$3, submitted_at=$4 WHERE id=$5`,
		a.Score, a.TotalPoints, a.TimeSpentSec, a.SubmittedAt, a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (*quiz.Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,status,score,total_points,answers_json,time_spent_sec,started_at,COALESCE(submitted_at,0)
		FROM attempts WHERE id=$1`, id)
	var a quiz.Attempt
	var ajson string
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Status, &a.Score, &a.TotalPoints, &ajson, &a.TimeSpentSec, &a.StartedAt, &a.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers of attempt %s: %w", id, err)
	}
	return &a, nil
}
