package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizsmith/quizsmith/internal/auth"
	"github.com/quizsmith/quizsmith/internal/quiz"
	"github.com/quizsmith/quizsmith/internal/storage"
)

// POST /attempts  { "quiz_id": "..." }
func CreateAttemptHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuizID string `json:"quiz_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
			http.Error(w, "quiz_id required", http.StatusBadRequest)
			return
		}
		c := auth.ClaimsFrom(r.Context())
		a, err := store.NewAttempt(r.Context(), req.QuizID, c.Sub)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// POST /attempts/{attemptID}/answers  { "answers": { questionID: answer } }
func SaveAnswersHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers map[string]json.RawMessage `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := ownAttempt(store, r, chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		a, err = store.SaveAnswers(r.Context(), a.ID, req.Answers)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/submit  { "time_spent_sec": 120 }
func SubmitAttemptHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TimeSpentSec int `json:"time_spent_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := ownAttempt(store, r, chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		a, err = store.Submit(r.Context(), a.ID, req.TimeSpentSec)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := ownAttempt(store, r, chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// ownAttempt hides other learners' attempts behind not-found; authors see all.
func ownAttempt(store storage.Store, r *http.Request, id string) (*quiz.Attempt, error) {
	a, err := store.GetAttempt(r.Context(), id)
	if err != nil {
		return nil, err
	}
	c := auth.ClaimsFrom(r.Context())
	if c == nil {
		return nil, storage.ErrNotFound
	}
	if c.Role != auth.RoleAuthor && a.UserID != c.Sub {
		return nil, storage.ErrNotFound
	}
	return a, nil
}
