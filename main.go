package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/yogz/colist/internal/config"
	"github.com/yogz/colist/internal/database"
	"github.com/yogz/colist/internal/llm"
	"github.com/yogz/colist/internal/server"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	generator := llm.NewClient(llm.Config{
		APIKey:  cfg.MistralAPIKey,
		Model:   cfg.MistralModel,
		BaseURL: cfg.MistralURL,
	})

	srv := server.New(db, cfg, generator)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
