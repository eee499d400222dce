package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/quizsmith/quizsmith/internal/genai"
	"github.com/quizsmith/quizsmith/internal/quiz"
	"github.com/quizsmith/quizsmith/internal/storage"
)

// POST /quizzes/generate
func GenerateQuizHandler(gen *genai.Client, store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gen == nil {
			http.Error(w, "generation is not configured", http.StatusServiceUnavailable)
			return
		}
		var req struct {
			Topic  string              `json:"topic"`
			Source string              `json:"source"`
			Count  int                 `json:"count"`
			Types  []quiz.QuestionType `json:"types"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Topic == "" {
			http.Error(w, "topic is required", http.StatusBadRequest)
			return
		}

		gq, err := gen.GenerateQuiz(r.Context(), genai.Request{
			Topic:  req.Topic,
			Source: req.Source,
			Count:  req.Count,
			Types:  req.Types,
		})
		var hard *genai.HardFailure
		if errors.As(err, &hard) {
			http.Error(w, hard.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		q := &quiz.Quiz{
			Title:       gq.Title,
			Topic:       req.Topic,
			Description: gq.Description,
			Questions:   gq.Questions,
		}
		for i := range q.Questions {
			q.Questions[i].ID = uuid.NewString()
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			storeError(w, err)
			return
		}
		// Per-question drops are a summary, not a failure.
		writeJSON(w, http.StatusCreated, map[string]any{
			"quiz":    q,
			"dropped": gq.Dropped,
		})
	}
}
