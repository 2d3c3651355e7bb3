// Package rag answers free-form cooking questions from the recipe corpus: the closest recipes
// to the question are retrieved by embedding similarity and handed to a chat model as context.
package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/pageza/chefai/backend/internal/recommend"
	"github.com/pageza/chefai/backend/internal/service"
)

// DefaultK is how many recipes are retrieved per question.
const DefaultK = 4

// Retriever returns the k recipes closest to query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]recommend.ScoredRecipe, error)
}

// Index is a vector index over stored recipe embeddings. store.CorpusReader implements it with
// pgvector.
type Index interface {
	Nearest(ctx context.Context, vec []float32, k int) ([]recommend.ScoredRecipe, error)
}

// VectorRetriever embeds the query and asks the database for its nearest neighbours.
type VectorRetriever struct {
	embedder recommend.TextEmbedder
	index    Index
}

func NewVectorRetriever(embedder recommend.TextEmbedder, index Index) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, index: index}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]recommend.ScoredRecipe, error) {
	vec, err := r.embedder.Encode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.index.Nearest(ctx, vec, k)
}

// EmbeddedSource lists recipes together with their stored embeddings.
type EmbeddedSource interface {
	Embedded(ctx context.Context) ([]service.EmbeddedRecipe, error)
}

// MemoryRetriever ranks stored embeddings in process. Used when the database has no vector
// operators, e.g. sqlite.
type MemoryRetriever struct {
	embedder recommend.TextEmbedder
	source   EmbeddedSource
}

func NewMemoryRetriever(embedder recommend.TextEmbedder, source EmbeddedSource) *MemoryRetriever {
	return &MemoryRetriever{embedder: embedder, source: source}
}

func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, k int) ([]recommend.ScoredRecipe, error) {
	if k <= 0 {
		return []recommend.ScoredRecipe{}, nil
	}
	vec, err := r.embedder.Encode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	corpus, err := r.source.Embedded(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]recommend.ScoredRecipe, len(corpus))
	for i, e := range corpus {
		scored[i] = recommend.ScoredRecipe{Recipe: e.Recipe, Score: recommend.CosineSimilarity(vec, e.Vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored[:min(k, len(scored))], nil
}
