package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/api/option"

	"github.com/pageza/chefai/backend/internal/breaker"
	"github.com/pageza/chefai/backend/internal/metrics"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// DefaultChatModel is used when no generation model is configured.
const DefaultChatModel = "gemini-1.5-flash"

// Generator produces an answer to prompt given a system instruction and the prior turns.
type Generator interface {
	Generate(ctx context.Context, system string, history []recommend.Turn, prompt string) (string, error)
}

type generateCall func(ctx context.Context, system string, history []recommend.Turn, prompt string) (string, error)

// GeminiGenerator answers through a Gemini chat session behind a circuit breaker.
type GeminiGenerator struct {
	client  *genai.Client
	call    generateCall
	breaker *gobreaker.CircuitBreaker[string]
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator connects to Gemini with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultChatModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := newGeminiGenerator(func(ctx context.Context, system string, history []recommend.Turn, prompt string) (string, error) {
		// GenerativeModel carries per-call state, so each call gets its own.
		gm := client.GenerativeModel(model)
		gm.SystemInstruction = genai.NewUserContent(genai.Text(system))

		cs := gm.StartChat()
		cs.History = toContents(history)

		resp, err := cs.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return responseText(resp)
	})
	g.client = client
	return g, nil
}

func newGeminiGenerator(call generateCall) *GeminiGenerator {
	return &GeminiGenerator{
		call:    call,
		breaker: breaker.New[string](breaker.DefaultConfig("gemini-chat")),
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, system string, history []recommend.Turn, prompt string) (string, error) {
	text, err := g.breaker.Execute(func() (string, error) {
		return g.call(ctx, system, history, prompt)
	})
	metrics.RecordUpstream("gemini-chat", err)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func toContents(history []recommend.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == recommend.RoleBot {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(turn.Content)}})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text in gemini response")
	}
	return sb.String(), nil
}
