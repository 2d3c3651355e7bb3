package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/chefai/backend/internal/metrics"
)

// DefaultTopN is how many recommendations a result carries.
const DefaultTopN = 3

// Engine runs the rule pipeline. It holds no per-request state and is safe for concurrent use
// as long as its Models are.
type Engine struct {
	analyzer *Analyzer
	ranker   *Ranker
	topN     int
	logger   zerolog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTopN overrides how many recommendations are returned.
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// NewEngine wires an engine around the shared models.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewEngine(models Models, logger zerolog.Logger, opts ...Option) *Engine {
	logger = logger.With().Str("component", "recommend").Logger()
	e := &Engine{
		analyzer: NewAnalyzer(models.Language, logger),
		ranker:   NewRanker(models.Embedder, logger),
		topN:     DefaultTopN,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleRuleQuery answers a query against corpus for the given profile.
//
// Queries that do not ask for a dish are rejected with a hint. Otherwise the corpus is filtered
// by the profile, ranked against the query and summarized; the message describes the whole
// ranked list while Recommendations holds at most the top N. The only error is
// ErrMalformedRecipe (or the context error if ctx is done).
func (e *Engine) HandleRuleQuery(ctx context.Context, query string, profile Profile, corpus []Recipe) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{}
	res.advance(StateReceivedQuery)

	started := time.Now()
	analysis := e.analyzer.Analyze(ctx, query)
	metrics.ObserveStage("analyze", started)
	res.Intent = analysis.Intent
	res.advance(StateIntentClassified)

	if analysis.Intent != IntentSuggestDish {
		res.Message = msgRejected
		res.Recommendations = []Recipe{}
		res.History = history(query, res.Message)
		res.advance(StateRejected)
		e.record(res)
		return res, nil
	}

	for i, r := range corpus {
		if r.ID == 0 {
			return nil, fmt.Errorf("corpus entry %d (%q): %w", i, r.Title, ErrMalformedRecipe)
		}
	}

	prefs, issues := profile.Preferences.Resolve()
	for _, issue := range issues {
		metrics.InvalidPreferences.WithLabelValues(issue.Field).Inc()
		e.logger.Warn().Str("field", issue.Field).Interface("value", issue.Value).Msg(issue.Reason)
	}

	started = time.Now()
	candidates := Filter(corpus, profile.Pantry, prefs)
	metrics.ObserveStage("filter", started)
	res.advance(StateFiltered)

	started = time.Now()
	ranked := e.ranker.Rank(ctx, query, candidates)
	metrics.ObserveStage("rank", started)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.advance(StateRanked)

	res.Message = Compose(query, ranked)
	res.advance(StateComposed)

	res.Recommendations = ranked[:min(len(ranked), e.topN)]
	res.History = history(query, res.Message)
	res.advance(StateReturned)

	e.logger.Debug().
		Int("corpus", len(corpus)).
		Int("candidates", len(candidates)).
		Int("returned", len(res.Recommendations)).
		Msg("rule query handled")
	e.record(res)
	return res, nil
}

func (e *Engine) record(res *Result) {
	metrics.PipelineOutcomes.WithLabelValues(string(res.State), string(res.Intent)).Inc()
}

func (r *Result) advance(s State) {
	r.Trace = append(r.Trace, s)
	r.State = s
}

func history(query, message string) []Turn {
	return []Turn{
		{Role: RoleUser, Content: query},
		{Role: RoleBot, Content: message},
	}
}
