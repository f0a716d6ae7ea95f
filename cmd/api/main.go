package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"driftbin/adapters/postgres"
	"driftbin/domain/core"
	"driftbin/internal/config"
	"driftbin/internal/report"
	"driftbin/models"
)

// The results API serves the records of past batch runs from the Postgres
// sink, as JSON and as a rendered HTML report.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required for the results API")
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	repo := postgres.NewResultRepository(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/runs/{runID}/records", func(w http.ResponseWriter, req *http.Request) {
		runID := core.RunID(chi.URLParam(req, "runID"))
		records, err := repo.ListRecords(req.Context(), runID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(models.JSONViews(records)); err != nil {
			log.Printf("[api] encode records: %v", err)
		}
	})

	r.Get("/api/runs/{runID}/report", func(w http.ResponseWriter, req *http.Request) {
		runID := core.RunID(chi.URLParam(req, "runID"))
		records, err := repo.ListRecords(req.Context(), runID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		md := report.Build(runID, records, nil)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(report.RenderHTML(md))
	})

	addr := ":" + cfg.Server.Port
	log.Printf("[api] listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
