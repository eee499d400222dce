package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizsmith/quizsmith/internal/moodle"
	"github.com/quizsmith/quizsmith/internal/storage"
)

// POST /quizzes/import (multipart: file=quiz.xml)
func ImportMoodleHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		q, report, err := moodle.Import(f)
		var perr *moodle.ParseError
		if errors.As(err, &perr) {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if q.Title == "" {
			base := filepath.Base(hdr.Filename)
			q.Title = strings.TrimSuffix(base, filepath.Ext(base))
		}
		for i := range q.Questions {
			q.Questions[i].ID = uuid.NewString()
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"quiz":   q,
			"report": report,
		})
	}
}

// GET /quizzes/{quizID}/export
func ExportMoodleHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		q, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		doc, err := moodle.Export(q)
		if errors.Is(err, moodle.ErrEmptyQuiz) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.xml"`)
		_, _ = io.WriteString(w, string(doc))
	}
}
