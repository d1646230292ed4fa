package main

import (
	"os"

	"golden-notes-be/internal/config"
	"golden-notes-be/internal/model"
	"golden-notes-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	color.Cyan("🚀 Running database migrations")

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.UserRefreshToken{},
		&model.Notebook{},
		&model.Note{},
	)
	if err != nil {
		color.Red("Migration failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Migrations applied: users, user_refresh_tokens, notebooks, notes")
}
