// Package tasks implements the scheduled background tasks of the bot:
// the periodic mood alert scan and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/moodmeter/moodmeter/internal/alert"
	"github.com/moodmeter/moodmeter/internal/config"
	"github.com/moodmeter/moodmeter/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger      *slog.Logger
	Store       database.Store
	AlertEngine *alert.Engine
	Config      *config.Config
}
