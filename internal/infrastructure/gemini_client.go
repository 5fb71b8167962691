package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
)

const geminiSystemPrompt = "You are a public health information assistant for rural and semi-urban communities. " +
	"Answer briefly in plain words, in %s. Do not diagnose or prescribe; suggest visiting a health center when symptoms are serious."

// GeminiClient calls Gemini through its OpenAI-compatible endpoint and
// folds every outcome into an AIResult.
type GeminiClient struct {
	client *openai.Client
	model  string
	apiKey string
}

func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration) *GeminiClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &GeminiClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		apiKey: apiKey,
	}
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string, lang entities.Language) entities.AIResult {
	if g.apiKey == "" {
		return entities.AIErrorResult(entities.ErrNotConfigured.Error())
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(geminiSystemPrompt, lang.Name())},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			log.WithFields(log.Fields{"status": apiErr.HTTPStatusCode, "code": apiErr.Code}).Warn("gemini api error")
		}
		return entities.AIErrorResult(err.Error())
	}
	if len(resp.Choices) == 0 {
		return entities.AIEmptyResult()
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return entities.AIEmptyResult()
	}
	return entities.AITextResult(text)
}
