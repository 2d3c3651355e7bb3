package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pageza/chefai/backend/internal/metrics"
)

var suggestLemmas = map[string]struct{}{
	"cook":    {},
	"make":    {},
	"prepare": {},
	"recipe":  {},
}

// Analysis is the outcome of lexical analysis. Degraded is set when the language model was
// missing or failed and the zero analysis was returned in its place.
type Analysis struct {
	Intent   Intent   `json:"intent"`
	Entities []string `json:"entities"`
	Keywords []string `json:"keywords"`
	Degraded bool     `json:"degraded"`
}

func degradedAnalysis() Analysis {
	return Analysis{
		Intent:   IntentUnknown,
		Entities: []string{},
		Keywords: []string{},
		Degraded: true,
	}
}

// Analyzer classifies queries with a LanguageModel.
type Analyzer struct {
	model  LanguageModel
	logger zerolog.Logger
}

// NewAnalyzer returns an analyzer. A nil model makes every query classify as unknown.
func NewAnalyzer(model LanguageModel, logger zerolog.Logger) *Analyzer {
	return &Analyzer{model: model, logger: logger}
}

// Analyze extracts intent, entities and keywords from query.
func (a *Analyzer) Analyze(ctx context.Context, query string) Analysis {
	lowered := strings.ToLower(query)

	doc, err := a.process(ctx, lowered)
	if err != nil {
		metrics.ModelFallbacks.WithLabelValues("language").Inc()
		a.logger.Warn().Err(err).Msg("language model unavailable, classifying as unknown")
		return degradedAnalysis()
	}

	out := Analysis{
		Intent:   classify(doc, lowered),
		Entities: make([]string, 0, len(doc.Entities)),
		Keywords: make([]string, 0, len(doc.Tokens)),
	}
	for _, ent := range doc.Entities {
		out.Entities = append(out.Entities, ent.Text)
	}
	for _, tok := range doc.Tokens {
		if tok.POS == POSNoun || tok.POS == POSAdj {
			out.Keywords = append(out.Keywords, tok.Text)
		}
	}
	return out
}

func (a *Analyzer) process(ctx context.Context, text string) (Document, error) {
	if a.model == nil {
		return Document{}, ErrModelUnavailable
	}
	doc, err := a.model.Process(ctx, text)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return doc, nil
}

func classify(doc Document, lowered string) Intent {
	for _, tok := range doc.Tokens {
		if _, ok := suggestLemmas[tok.Lemma]; ok {
			return IntentSuggestDish
		}
	}
	if strings.Contains(lowered, "pantry") {
		return IntentManagePantry
	}
	return IntentUnknown
}
