// Package ai builds the embedding and LLM adapters selected in
// configuration. A provider left unset disables the capability rather
// than failing startup: the pipeline then degrades to hash-only
// deduplication and recorded-but-unsummarised changes.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	ollamaembed "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/llm/openai"
	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService builds the configured embedding adapter.
// Returns (nil, nil) when no provider is configured.
func CreateEmbeddingService(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	switch provider {
	case "", "none":
		return nil, nil
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  apiKey(cfg, "embedding.api_key", "OPENAI_API_KEY"),
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidConfig, provider)
	}
}

// CreateLLMService builds the configured LLM adapter.
// Returns (nil, nil) when no provider is configured.
func CreateLLMService(cfg driven.ConfigStore) (driven.LLMService, error) {
	provider := cfg.GetString("llm.provider")
	switch provider {
	case "", "none":
		return nil, nil
	case "openai":
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  apiKey(cfg, "llm.api_key", "OPENAI_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	case "anthropic":
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  apiKey(cfg, "llm.api_key", "ANTHROPIC_API_KEY"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidConfig, provider)
	}
}

// CreateAndValidateEmbeddingService builds the embedding adapter and
// checks connectivity before handing it out.
func CreateAndValidateEmbeddingService(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(cfg)
	if err != nil || svc == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); check the embedding.* configuration",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService builds the LLM adapter and checks
// connectivity before handing it out.
func CreateAndValidateLLMService(cfg driven.ConfigStore) (driven.LLMService, error) {
	svc, err := CreateLLMService(cfg)
	if err != nil || svc == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); check the llm.* configuration",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// apiKey reads a key from config, falling back to the environment.
func apiKey(cfg driven.ConfigStore, key, envVar string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}
