package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"medibot-ai/internal/agent"
	"medibot-ai/internal/auth"
	"medibot-ai/internal/config"
	"medibot-ai/internal/consultation"
	"medibot-ai/internal/detector"
	"medibot-ai/internal/report"
	"medibot-ai/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load("./configs")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 1. Persistence
	repo := consultation.NewMemoryRepository()
	if cfg.Postgres.URL != "" {
		db, err := openPostgres(cfg.Postgres.URL, logger)
		if err != nil {
			logger.Warn("could not connect to database, falling back to in-memory store", "error", err)
		} else {
			runMigrations(cfg, logger)
			repo = consultation.NewPostgresRepository(db)
			logger.Info("connected to database")
		}
	}

	// 2. Collaborators
	var llm consultation.LLMClient
	if cfg.Groq.UseMock || cfg.Groq.APIKey == "" {
		logger.Info("using mock LLM client")
		llm = agent.NewMockClient()
	} else {
		llm = agent.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, logger)
	}

	var skinDetector consultation.SkinDetector
	if cfg.Detector.ServiceURL != "" {
		skinDetector = detector.NewClient(cfg.Detector.ServiceURL)
	} else {
		logger.Warn("detector service not configured, image classification disabled")
	}

	// 3. Services
	svc := consultation.NewService(skinDetector, llm, logger)
	reportSvc := report.NewService()
	users := auth.NewFileStore(cfg.Auth.UserDBPath)
	sessions := auth.NewSessionManager(func(owner string) *consultation.Store {
		return consultation.NewStore(consultation.SaverFor(repo, owner))
	})

	// 4. Router
	srv := server.New(users, sessions, svc, reportSvc, logger)

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, srv); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// openPostgres retries the connection a few times to cover container startup
// ordering.
func openPostgres(url string, logger *slog.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", url)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			return db, nil
		}
		logger.Info("waiting for database", "attempt", i+1)
		time.Sleep(2 * time.Second)
	}
	return nil, err
}

func runMigrations(cfg *config.Config, logger *slog.Logger) {
	m, err := migrate.New(cfg.Postgres.MigrationsPath, cfg.Postgres.URL)
	if err != nil {
		logger.Warn("migration init failed", "error", err)
		return
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Warn("migration up failed", "error", err)
		return
	}
	logger.Info("migrations applied")
}
