package handlers

import (
	"log/slog"

	"github.com/moodmeter/moodmeter/internal/classifier"
	"github.com/moodmeter/moodmeter/internal/config"
	"github.com/moodmeter/moodmeter/internal/database"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Classifier classifier.Classifier
}
