package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/testportal/portal/internal/api/http"
	"github.com/testportal/portal/internal/audit"
	auth "github.com/testportal/portal/internal/auth/middleware"
	"github.com/testportal/portal/internal/config"
	"github.com/testportal/portal/internal/db"
	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/grading"
	"github.com/testportal/portal/internal/logging"
	"github.com/testportal/portal/internal/rbac"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.Setup(os.Stderr, cfg.LogLevel)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewEventRepo(dbh)

	// --- Grading core ---
	scorer := grading.NewScorer()
	recalc := grading.NewRecalculator(store, scorer, logger)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, cfg))
	r.Post("/auth/student", auth.StudentLoginHandler(authSvc, cfg))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Admin: publish and maintain exams
		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.PublishExamHandler(store, events))
		pr.With(rbac.Require("exam:edit")).
			Put("/exams/{examID}/questions", api.UpdateQuestionsHandler(store, recalc, events))
		pr.With(rbac.Require("exam:release")).
			Post("/exams/{examID}/release", api.ReleaseResultsHandler(store, events))
		pr.With(rbac.Require("exam:export")).
			Get("/exams/{examID}/export", api.ExportResultsHandler(store))
		pr.With(rbac.Require("submission:view-all")).
			Get("/exams/{examID}/submissions", api.ListSubmissionsHandler(store))

		// Student/Admin
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))
		pr.With(rbac.Require("submission:create")).
			Post("/exams/{examID}/submissions", api.CreateSubmissionHandler(store, scorer))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}", api.GetSubmissionHandler(store))
		pr.With(rbac.Require("leaderboard:view")).
			Get("/exams/{examID}/leaderboard", api.LeaderboardHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	logger.Info("listening", "addr", cfg.HTTPAddr, "mode", string(cfg.Mode), "db", cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
