package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/chefai/backend/internal/metrics"
	"github.com/pageza/chefai/backend/internal/recommend"
)

var (
	// ErrUnavailable means no engine was configured.
	ErrUnavailable = errors.New("rag engine unavailable")
	// ErrGeneration wraps failures while retrieving context or generating the answer.
	ErrGeneration = errors.New("rag generation failed")
)

const systemPrompt = "You are a cooking assistant. Use the context to answer."

// Answer is a generated reply and the recipes it was grounded on.
type Answer struct {
	Text    string
	Sources []recommend.Recipe
}

// Engine ties a retriever to a generator.
type Engine struct {
	retriever Retriever
	generator Generator
	k         int
	logger    zerolog.Logger
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewEngine(retriever Retriever, generator Generator, logger zerolog.Logger) *Engine {
	return &Engine{
		retriever: retriever,
		generator: generator,
		k:         DefaultK,
		logger:    logger.With().Str("component", "rag").Logger(),
	}
}

// Available reports whether the engine can answer at all. A nil engine is unavailable.
func (e *Engine) Available() bool {
	return e != nil && e.retriever != nil && e.generator != nil
}

// Answer retrieves the recipes closest to query and asks the generator to answer it, given the
// previous turns of the conversation.
func (e *Engine) Answer(ctx context.Context, query string, history []recommend.Turn) (*Answer, error) {
	if !e.Available() {
		return nil, ErrUnavailable
	}

	start := time.Now()
	docs, err := e.retriever.Retrieve(ctx, query, e.k)
	metrics.ObserveStage("rag_retrieve", start)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve: %v", ErrGeneration, err)
	}

	sources := make([]recommend.Recipe, len(docs))
	for i, d := range docs {
		sources[i] = d.Recipe
	}

	start = time.Now()
	text, err := e.generator.Generate(ctx, BuildSystemPrompt(sources), history, query)
	metrics.ObserveStage("rag_generate", start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	e.logger.Debug().Int("sources", len(sources)).Int("history", len(history)).Msg("rag answer generated")
	return &Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

// BuildSystemPrompt renders the retrieved recipes into the system instruction.
func BuildSystemPrompt(docs []recommend.Recipe) string {
	if len(docs) == 0 {
		return systemPrompt
	}
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nContext:\n")
	for i, d := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(d.Document())
	}
	return sb.String()
}
