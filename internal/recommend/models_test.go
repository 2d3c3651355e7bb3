package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRegistryLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	reg := NewModelRegistry(func(context.Context) (Models, error) {
		calls.Add(1)
		return Models{Language: newWordModel()}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := reg.Get(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, m.Language)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestModelRegistryErrorIsSticky(t *testing.T) {
	var calls atomic.Int32
	reg := NewModelRegistry(func(context.Context) (Models, error) {
		calls.Add(1)
		return Models{}, errors.New("lexicon missing")
	})

	_, err := reg.Get(context.Background())
	require.Error(t, err)
	_, err = reg.Get(context.Background())
	require.Error(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestSharedModelsSurviveFailedInference(t *testing.T) {
	emb := &flakyEmbedder{}
	e := NewEngine(Models{Language: newWordModel(), Embedder: emb}, zerolog.Nop())
	corpus := []Recipe{
		{ID: 1, Title: "A", Ingredients: []string{"egg"}},
		{ID: 2, Title: "B", Ingredients: []string{"egg"}},
	}
	profile := Profile{Pantry: NewPantry("egg")}

	emb.fail.Store(true)
	res, err := e.HandleRuleQuery(context.Background(), "cook", profile, corpus)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(res.Recommendations))

	emb.fail.Store(false)
	res, err = e.HandleRuleQuery(context.Background(), "cook", profile, corpus)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(res.Recommendations))
}

// flakyEmbedder prefers B while healthy and fails on demand.
type flakyEmbedder struct {
	fail atomic.Bool
}

func (f *flakyEmbedder) Encode(_ context.Context, text string) ([]float32, error) {
	if f.fail.Load() {
		return nil, ErrModelUnavailable
	}
	switch text {
	case "B. ":
		return []float32{1, 0}, nil
	case "A. ":
		return []float32{0, 1}, nil
	default:
		return []float32{1, 0}, nil
	}
}
