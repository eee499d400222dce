package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	api "github.com/quizsmith/quizsmith/internal/api/http"
	"github.com/quizsmith/quizsmith/internal/auth"
	"github.com/quizsmith/quizsmith/internal/config"
	"github.com/quizsmith/quizsmith/internal/db"
	"github.com/quizsmith/quizsmith/internal/genai"
	"github.com/quizsmith/quizsmith/internal/grading"
	"github.com/quizsmith/quizsmith/internal/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		slog.Error("db open failed", "err", err)
		os.Exit(1)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		slog.Error("seed admin failed", "err", err)
		os.Exit(1)
	}

	store := storage.NewSQLStore(dbh, grading.NewGrader())
	authSvc := auth.NewService(cfg.JWTSecret, dbh)

	var gen *genai.Client
	if cfg.GenAPIKey != "" {
		gen, err = genai.NewClient(cfg.GenModel, cfg.GenAPIKey, cfg.GenBaseURL, nil)
		if err != nil {
			slog.Error("generator client failed", "err", err)
			os.Exit(1)
		}
	} else {
		slog.Info("GEN_API_KEY not set; quiz generation disabled")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Author-only surface.
		pr.Group(func(ar chi.Router) {
			ar.Use(auth.RequireRole(auth.RoleAuthor))
			ar.Post("/quizzes", api.CreateQuizHandler(store))
			ar.Put("/quizzes/{quizID}", api.UpdateQuizHandler(store))
			ar.Delete("/quizzes/{quizID}", api.DeleteQuizHandler(store))
			ar.Post("/quizzes/import", api.ImportMoodleHandler(store))
			ar.Get("/quizzes/{quizID}/export", api.ExportMoodleHandler(store))
			ar.Post("/quizzes/generate", api.GenerateQuizHandler(gen, store))
		})

		pr.Get("/quizzes", api.ListQuizzesHandler(store))
		pr.Get("/quizzes/{quizID}", api.GetQuizHandler(store))

		pr.Post("/attempts", api.CreateAttemptHandler(store))
		pr.Post("/attempts/{attemptID}/answers", api.SaveAnswersHandler(store))
		pr.Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(store))
		pr.Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
	})

	slog.Info("listening", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// seedAdmin creates the bootstrap author account when one is configured and
// the users table does not know it yet.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	var exists int
	err := dbh.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, cfg.AdminUser).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	_, err = dbh.ExecContext(ctx, `INSERT INTO users (id,username,pass_hash,role,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, auth.RoleAuthor, time.Now().Unix())
	return err
}
