package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gzdyj/exam-system/internal/account"
	api "github.com/gzdyj/exam-system/internal/api/http"
	"github.com/gzdyj/exam-system/internal/auth"
	"github.com/gzdyj/exam-system/internal/config"
	"github.com/gzdyj/exam-system/internal/db"
	"github.com/gzdyj/exam-system/internal/exam"
	"github.com/gzdyj/exam-system/internal/rbac"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.TokenTTLHrs)*time.Hour)
	accounts := account.NewService(dbh, authSvc, cfg.BcryptCost)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.LoginHandler(accounts))
	r.Post("/auth/register", api.RegisterHandler(accounts))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/auth/info", api.UserInfoHandler(accounts))

		pr.Route("/questions", func(qr chi.Router) {
			qr.With(rbac.Require("question:view")).Get("/", api.ListQuestionsHandler(store))
			qr.With(rbac.Require("question:view")).Get("/random", api.RandomQuestionsHandler(store))
			qr.With(rbac.Require("question:view")).Get("/modules", api.ListModulesHandler(store))
			qr.With(rbac.Require("question:view")).Get("/practice", api.PracticeQuestionsHandler(store))
			qr.With(rbac.Require("question:view")).Get("/exam", api.ExamQuestionsHandler(store))
			qr.With(rbac.Require("question:view")).Get("/{id}", api.GetQuestionHandler(store))

			qr.With(rbac.Require("question:manage")).Post("/", api.CreateQuestionHandler(store))
			qr.With(rbac.Require("question:manage")).Put("/{id}", api.UpdateQuestionHandler(store))
			qr.With(rbac.Require("question:manage")).Delete("/{id}", api.DeleteQuestionHandler(store))
		})

		pr.Route("/papers", func(ppr chi.Router) {
			ppr.With(rbac.Require("paper:view")).Get("/", api.ListPapersHandler(store))
			ppr.With(rbac.Require("paper:view")).Get("/{id}", api.GetPaperHandler(store))
			ppr.With(rbac.Require("paper:view")).Get("/{id}/questions", api.PaperQuestionsHandler(store))

			ppr.With(rbac.Require("paper:manage")).Post("/", api.CreatePaperHandler(store))
			ppr.With(rbac.Require("paper:manage")).Put("/{id}", api.UpdatePaperHandler(store))
			ppr.With(rbac.Require("paper:manage")).Delete("/{id}", api.DeletePaperHandler(store))
		})

		pr.Route("/exam-records", func(er chi.Router) {
			er.With(rbac.RequireAny("record:view-own", "record:view-all")).Get("/", api.ListRecordsHandler(store))
			er.With(rbac.RequireAny("record:view-own", "record:view-all")).Get("/{id}", api.GetRecordHandler(store))
			er.With(rbac.Require("record:start")).Post("/start", api.StartExamHandler(store))
			er.With(rbac.Require("record:submit")).Post("/{id}/submit", api.SubmitExamHandler(store))
		})

		pr.Route("/users", func(ur chi.Router) {
			ur.With(rbac.Require("users:manage")).Get("/", api.ListUsersHandler(accounts))
			ur.With(rbac.Require("users:manage")).Post("/", api.AddUserHandler(accounts))
			ur.With(rbac.Require("users:manage")).Put("/{id}", api.UpdateUserHandler(accounts))
			ur.With(rbac.Require("users:manage")).Delete("/{id}", api.DeleteUserHandler(accounts))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
