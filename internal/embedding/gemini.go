// Package embedding provides the TextEmbedder implementations used by the ranker and the RAG
// retriever: Gemini, an offline feature-hashing embedder, and a Redis-backed cache in front of
// either.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/api/option"

	"github.com/pageza/chefai/backend/internal/breaker"
	"github.com/pageza/chefai/backend/internal/metrics"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// DefaultGeminiModel is the embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// embedCall performs one remote embedding request.
type embedCall func(ctx context.Context, text string) ([]float32, error)

// GeminiEmbedder embeds text with the Gemini embedding API behind a circuit breaker.
type GeminiEmbedder struct {
	client  *genai.Client
	name    string
	call    embedCall
	breaker *gobreaker.CircuitBreaker[[]float32]
}

var _ recommend.TextEmbedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder connects to Gemini with apiKey.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	em := client.EmbeddingModel(model)
	g := newGeminiEmbedder(model, func(ctx context.Context, text string) ([]float32, error) {
		resp, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, errors.New("empty embedding from gemini")
		}
		return resp.Embedding.Values, nil
	})
	g.client = client
	return g, nil
}

func newGeminiEmbedder(model string, call embedCall) *GeminiEmbedder {
	return &GeminiEmbedder{
		name:    model,
		call:    call,
		breaker: breaker.New[[]float32](breaker.DefaultConfig("gemini-embed")),
	}
}

// Name identifies the model; it is part of the cache key.
func (g *GeminiEmbedder) Name() string {
	return "gemini/" + g.name
}

// Encode returns the embedding of text. Failures, including an open breaker, wrap
// recommend.ErrModelUnavailable.
func (g *GeminiEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.breaker.Execute(func() ([]float32, error) {
		return g.call(ctx, text)
	})
	metrics.RecordUpstream("gemini-embed", err)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed: %v", recommend.ErrModelUnavailable, err)
	}
	return vec, nil
}

// Close releases the underlying client.
func (g *GeminiEmbedder) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
