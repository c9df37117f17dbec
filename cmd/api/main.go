package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/config"
	"github.com/cleantask/cleantask-api/internal/db"
	"github.com/cleantask/cleantask-api/internal/handlers"
	"github.com/cleantask/cleantask-api/internal/middleware"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, db.PoolConfig{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		MaxLifetime: cfg.DBMaxLifetime,
	})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	hasher := auth.NewHasher(cfg.BcryptCost)

	accounts := store.NewPostgresAccountRepository(dbConn)
	tasks := store.NewPostgresTaskRepository(dbConn)
	stats := store.NewPostgresStatsRepository(dbConn)

	h := handlers.NewHandler(accounts, tasks, stats, hasher, issuer, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	// Public
	r.Post("/auth/login", h.Auth.Login)
	r.Post("/accounts", h.Auth.Register)

	// Authenticated, any role
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(issuer, log))

		r.Get("/me", h.Auth.Me)

		r.Get("/tasks", h.Tasks.List)
		r.Post("/tasks", h.Tasks.Create)
		r.Get("/tasks/{id}", h.Tasks.GetByID)
		r.Put("/tasks/{id}", h.Tasks.Update)
		r.Patch("/tasks/{id}/status", h.Tasks.UpdateStatus)
		r.Delete("/tasks/{id}", h.Tasks.Delete)
	})

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(issuer, log))
		r.Use(middleware.RequireRole(models.RoleAdmin, log))

		r.Get("/admin/accounts", h.Admin.ListAccounts)
		r.Post("/admin/accounts", h.Admin.CreateAccount)
		r.Patch("/admin/accounts/{id}/role", h.Admin.UpdateRole)
		r.Delete("/admin/accounts/{id}", h.Admin.DeleteAccount)
		r.Get("/admin/stats", h.Admin.Stats)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}
