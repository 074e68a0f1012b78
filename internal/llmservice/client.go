// Package llmservice builds langchaingo provider clients from
// configuration and invokes the generation model.
package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"benefits-rag/internal/config"
	"benefits-rag/internal/models"
)

// NewLLM creates a generation model client for the configured provider.
func NewLLM(llmConfig *config.LLMConfig) (llms.Model, error) {
	switch llmConfig.Provider {
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	default:
		return openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	}
}

// NewEmbedder creates an embedding provider client for the configured
// provider.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        llmConfig.Provider,
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating embedder")

	switch llmConfig.Provider {
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, err
		}
		return embeddings.NewEmbedder(llm)
	default:
		llm, err := openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, err
		}
		return embeddings.NewEmbedder(llm)
	}
}

// GenerateContent calls the generation model with the given messages and
// returns the first choice's content.
func GenerateContent(ctx context.Context, model llms.Model, messages []llms.MessageContent) (string, error) {
	res, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: generation call failed: %v", models.ErrProviderFailure, err)
	}
	if res == nil || len(res.Choices) == 0 || res.Choices[0].Content == "" {
		return "", fmt.Errorf("%w: generation provider returned no content", models.ErrProviderFailure)
	}
	return res.Choices[0].Content, nil
}
