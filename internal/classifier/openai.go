package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/moodmeter/moodmeter/internal/config"
)

// openaiClassifier scores sentiment through the OpenAI chat completion API.
type openaiClassifier struct {
	client      *openai.Client
	log         *slog.Logger
	model       string
	temperature float32
	timeout     time.Duration
}

func newOpenAIClassifier(cfg config.ClassifierConfig, log *slog.Logger) Classifier {
	logger := log.With("component", "openai_classifier")
	logger.Info("OpenAI classifier initialized successfully", "model", cfg.Model)

	return &openaiClassifier{
		client:      openai.NewClient(cfg.APIKey),
		log:         logger,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (c *openaiClassifier) Classify(ctx context.Context, text string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sentimentInstruction},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		c.log.WarnContext(ctx, "OpenAI API call failed", "error", err)
		return Result{}, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, errors.New("openai returned no choices")
	}

	result, err := parseResult(resp.Choices[0].Message.Content)
	if err != nil {
		c.log.WarnContext(ctx, "OpenAI returned unparseable classification",
			"response", resp.Choices[0].Message.Content, "error", err)
		return Result{}, err
	}

	c.log.DebugContext(ctx, "Message classified",
		"label", result.Label.String(), "confidence", result.Confidence)
	return result, nil
}
