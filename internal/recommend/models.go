package recommend

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Part-of-speech tags produced by a LanguageModel. Only NOUN and ADJ feed keywords.
const (
	POSNoun  = "NOUN"
	POSAdj   = "ADJ"
	POSVerb  = "VERB"
	POSAux   = "AUX"
	POSPron  = "PRON"
	POSDet   = "DET"
	POSAdp   = "ADP"
	POSConj  = "CCONJ"
	POSNum   = "NUM"
	POSPunct = "PUNCT"
	POSOther = "X"
)

// Token is one analysed word of a Document.
type Token struct {
	Text  string
	Lemma string
	POS   string
}

// Entity is a named span of a Document. Start and End are token offsets, End exclusive.
type Entity struct {
	Text  string
	Label string
	Start int
	End   int
}

// Document is the output of a LanguageModel.
type Document struct {
	Tokens   []Token
	Entities []Entity
}

// LanguageModel tokenizes, lemmatizes, tags and finds entities in text.
type LanguageModel interface {
	Process(ctx context.Context, text string) (Document, error)
}

// TextEmbedder maps text to a dense vector.
type TextEmbedder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// RecipeStore supplies the recipe corpus.
type RecipeStore interface {
	GetAll(ctx context.Context) ([]Recipe, error)
}

// ProfileStore supplies a user's pantry and preferences.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
}

// Models is the set of shared inference collaborators. Either field may be nil; the pipeline
// degrades instead of failing. Implementations must be safe for concurrent reads.
type Models struct {
	Language LanguageModel
	Embedder TextEmbedder
}

// ModelLoader builds the shared models. It runs at most once per registry.
type ModelLoader func(ctx context.Context) (Models, error)

// ModelRegistry loads Models lazily on first use and then hands out the same instance.
type ModelRegistry struct {
	load   ModelLoader
	once   sync.Once
	models Models
	err    error
}

func NewModelRegistry(load ModelLoader) *ModelRegistry {
	return &ModelRegistry{load: load}
}

// Get returns the loaded models, loading them on the first call. A load error is sticky.
func (r *ModelRegistry) Get(ctx context.Context) (Models, error) {
	r.once.Do(func() {
		r.models, r.err = r.load(ctx)
	})
	return r.models, r.err
}
