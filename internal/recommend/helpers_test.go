package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockLanguageModel is a testify mock for LanguageModel.
type MockLanguageModel struct {
	mock.Mock
}

func (m *MockLanguageModel) Process(ctx context.Context, text string) (Document, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(Document), args.Error(1)
}

// MockEmbedder is a testify mock for TextEmbedder.
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

// wordModel splits on whitespace and looks lemmas and tags up in small tables.
type wordModel struct {
	lemmas map[string]string
	pos    map[string]string
	ents   map[string]string
}

func newWordModel() *wordModel {
	return &wordModel{
		lemmas: map[string]string{
			"cooking":   "cook",
			"made":      "make",
			"recipes":   "recipe",
			"preparing": "prepare",
		},
		pos: map[string]string{
			"what": POSPron, "what's": POSPron, "can": POSAux, "i": POSPron, "with": POSAdp,
			"the": POSDet, "and": POSConj, "a": POSDet, "is": POSAux, "in": POSAdp, "my": POSPron,
			"cook": POSVerb, "make": POSVerb, "cooking": POSVerb, "made": POSVerb, "show": POSVerb,
			"quick": POSAdj, "spicy": POSAdj, "add": POSVerb, "to": POSAdp,
		},
		ents: map[string]string{"italian": "NORP"},
	}
}

func (w *wordModel) Process(_ context.Context, text string) (Document, error) {
	var doc Document
	for i, word := range strings.Fields(text) {
		word = strings.Trim(word, "?!.,")
		if word == "" {
			continue
		}
		lemma := word
		if l, ok := w.lemmas[word]; ok {
			lemma = l
		}
		pos := POSNoun
		if p, ok := w.pos[word]; ok {
			pos = p
		}
		doc.Tokens = append(doc.Tokens, Token{Text: word, Lemma: lemma, POS: pos})
		if label, ok := w.ents[word]; ok {
			doc.Entities = append(doc.Entities, Entity{Text: word, Label: label, Start: i, End: i + 1})
		}
	}
	return doc, nil
}

// tableEmbedder returns a fixed vector per text and fails on unknown text.
type tableEmbedder map[string][]float32

func (t tableEmbedder) Encode(_ context.Context, text string) ([]float32, error) {
	v, ok := t[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

// funcEmbedder adapts a function to TextEmbedder.
type funcEmbedder func(text string) []float32

func (f funcEmbedder) Encode(_ context.Context, text string) ([]float32, error) {
	return f(text), nil
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func titles(recipes []Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}
