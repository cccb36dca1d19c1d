// Package classifier implements sentiment classification of chat messages
// using an external LLM. The model is treated as a black box returning a
// discrete label and a confidence score.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moodmeter/moodmeter/internal/config"
	"github.com/moodmeter/moodmeter/internal/mood"
)

// Result is a single classification outcome.
type Result struct {
	Label      mood.Label
	Confidence float64
}

// Classifier scores the sentiment of a message text. Implementations are
// synchronous and side-effect-free; calls complete or fail within the
// configured timeout.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// New selects and constructs the configured classifier backend.
func New(ctx context.Context, cfg config.ClassifierConfig, log *slog.Logger) (Classifier, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiClassifier(ctx, cfg, log)
	case "openai":
		return newOpenAIClassifier(cfg, log), nil
	}
	return nil, fmt.Errorf("unsupported classifier provider %q", cfg.Provider)
}

// sentimentInstruction is the contract both backends hold the model to:
// exactly one label out of three, with a confidence in [0,1], as bare JSON.
const sentimentInstruction = `You are a sentiment classifier for chat messages. ` +
	`Classify the sentiment of the user's message as exactly one of POSITIVE, NEGATIVE or NEUTRAL. ` +
	`Respond with a JSON object of this exact structure and nothing else:
{"label": "POSITIVE", "confidence": 0.95}
"confidence" is your confidence in the chosen label, between 0 and 1.`

type wireResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// parseResult decodes and validates a model response. Code fences around
// the JSON are tolerated; anything violating the label/confidence contract
// is an error.
func parseResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var wire wireResult
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Result{}, fmt.Errorf("failed to parse classifier response %q: %w", raw, err)
	}

	label, err := mood.ParseLabel(wire.Label)
	if err != nil {
		return Result{}, fmt.Errorf("classifier returned invalid label: %w", err)
	}
	if wire.Confidence < 0 || wire.Confidence > 1 {
		return Result{}, fmt.Errorf("classifier returned out-of-range confidence %v", wire.Confidence)
	}

	return Result{Label: label, Confidence: wire.Confidence}, nil
}
