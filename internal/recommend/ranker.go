package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pageza/chefai/backend/internal/metrics"
)

// Ranker orders candidates by semantic similarity to the query.
type Ranker struct {
	embedder TextEmbedder
	logger   zerolog.Logger
}

// NewRanker returns a ranker. With a nil embedder Rank keeps the input order.
func NewRanker(embedder TextEmbedder, logger zerolog.Logger) *Ranker {
	return &Ranker{embedder: embedder, logger: logger}
}

// Rank returns recipes sorted by descending similarity to query. Ties keep their input order.
// If the embedder is missing or fails, the input order is returned. The input slice is not
// modified and no recipe is dropped.
func (r *Ranker) Rank(ctx context.Context, query string, recipes []Recipe) []Recipe {
	scored, ok := r.Score(ctx, query, recipes)
	if !ok {
		return append([]Recipe(nil), recipes...)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	out := make([]Recipe, len(scored))
	for i, s := range scored {
		out[i] = s.Recipe
	}
	return out
}

// Score computes the similarity of every recipe to query, in input order. ok is false when no
// scoring happened: no embedder, no recipes, or an embedder failure.
func (r *Ranker) Score(ctx context.Context, query string, recipes []Recipe) ([]ScoredRecipe, bool) {
	if r.embedder == nil || len(recipes) == 0 {
		return nil, false
	}

	qvec, err := r.encode(ctx, query)
	if err != nil {
		r.fallback(err)
		return nil, false
	}

	scored := make([]ScoredRecipe, len(recipes))
	for i, rec := range recipes {
		rvec, err := r.encode(ctx, rec.Document())
		if err != nil {
			r.fallback(err)
			return nil, false
		}
		scored[i] = ScoredRecipe{Recipe: rec, Score: CosineSimilarity(qvec, rvec)}
	}
	return scored, true
}

func (r *Ranker) encode(ctx context.Context, text string) ([]float32, error) {
	vec, err := r.embedder.Encode(ctx, text)
	if err != nil && !errors.Is(err, ErrModelUnavailable) {
		err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return vec, err
}

func (r *Ranker) fallback(err error) {
	metrics.ModelFallbacks.WithLabelValues("embedder").Inc()
	r.logger.Warn().Err(err).Msg("embedder unavailable, keeping filter order")
}

// CosineSimilarity returns the cosine of the angle between a and b. It is 0 when the
// dimensions differ, either vector is empty, or either magnitude is 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
