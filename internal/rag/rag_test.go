package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/embedding"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/recommend"
	"github.com/pageza/chefai/backend/internal/service"
)

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, k int) ([]recommend.ScoredRecipe, error) {
	args := m.Called(ctx, query, k)
	if v := args.Get(0); v != nil {
		return v.([]recommend.ScoredRecipe), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, system string, history []recommend.Turn, prompt string) (string, error) {
	args := m.Called(ctx, system, history, prompt)
	return args.String(0), args.Error(1)
}

type staticSource []service.EmbeddedRecipe

func (s staticSource) Embedded(context.Context) ([]service.EmbeddedRecipe, error) {
	return s, nil
}

type fakeIndex struct {
	gotVec []float32
	gotK   int
	out    []recommend.ScoredRecipe
}

func (f *fakeIndex) Nearest(_ context.Context, vec []float32, k int) ([]recommend.ScoredRecipe, error) {
	f.gotVec, f.gotK = vec, k
	return f.out, nil
}

type brokenEmbedder struct{}

func (brokenEmbedder) Encode(context.Context, string) ([]float32, error) {
	return nil, recommend.ErrModelUnavailable
}

func embedded(t *testing.T, emb recommend.TextEmbedder, recipes ...recommend.Recipe) staticSource {
	t.Helper()
	out := make(staticSource, len(recipes))
	for i, r := range recipes {
		vec, err := emb.Encode(context.Background(), r.Document())
		require.NoError(t, err)
		out[i] = service.EmbeddedRecipe{Recipe: r, Vector: vec}
	}
	return out
}

func TestMemoryRetriever(t *testing.T) {
	emb := embedding.NewHashEmbedder(256)
	source := embedded(t, emb,
		recommend.Recipe{ID: 1, Title: "Chocolate cake", Instructions: "Bake the chocolate cake"},
		recommend.Recipe{ID: 2, Title: "Tomato soup", Instructions: "Simmer tomato soup with basil"},
		recommend.Recipe{ID: 3, Title: "Garden salad", Instructions: "Toss the salad"},
	)
	r := NewMemoryRetriever(emb, source)

	got, err := r.Retrieve(context.Background(), "tomato soup with basil", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Recipe.ID)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	all, err := r.Retrieve(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := r.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVectorRetriever(t *testing.T) {
	emb := embedding.NewHashEmbedder(16)
	index := &fakeIndex{out: []recommend.ScoredRecipe{{Recipe: recommend.Recipe{ID: 7}, Score: 0.9}}}

	got, err := NewVectorRetriever(emb, index).Retrieve(context.Background(), "pasta", DefaultK)
	require.NoError(t, err)
	assert.Equal(t, index.out, got)
	assert.Equal(t, DefaultK, index.gotK)
	assert.Len(t, index.gotVec, 16)
}

func TestRetrieversPropagateEmbedderErrors(t *testing.T) {
	_, err := NewVectorRetriever(brokenEmbedder{}, &fakeIndex{}).Retrieve(context.Background(), "q", 4)
	assert.ErrorIs(t, err, recommend.ErrModelUnavailable)

	_, err = NewMemoryRetriever(brokenEmbedder{}, staticSource{}).Retrieve(context.Background(), "q", 4)
	assert.ErrorIs(t, err, recommend.ErrModelUnavailable)
}

func TestEngineAnswer(t *testing.T) {
	soup := recommend.Recipe{ID: 2, Title: "Tomato soup", Instructions: "Simmer."}
	history := []recommend.Turn{{Role: recommend.RoleUser, Content: "hi"}, {Role: recommend.RoleBot, Content: "hello"}}

	retriever := new(MockRetriever)
	retriever.On("Retrieve", mock.Anything, "what soup?", DefaultK).
		Return([]recommend.ScoredRecipe{{Recipe: soup, Score: 0.8}}, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything,
		"You are a cooking assistant. Use the context to answer.\n\nContext:\nTomato soup. Simmer.",
		history, "what soup?").
		Return("  Try the tomato soup.\n", nil)

	engine := NewEngine(retriever, generator, logging.Nop())
	answer, err := engine.Answer(context.Background(), "what soup?", history)
	require.NoError(t, err)

	assert.Equal(t, "Try the tomato soup.", answer.Text)
	assert.Equal(t, []recommend.Recipe{soup}, answer.Sources)
	retriever.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestEngineFailures(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		var nilEngine *Engine
		_, err := nilEngine.Answer(context.Background(), "q", nil)
		assert.ErrorIs(t, err, ErrUnavailable)

		_, err = NewEngine(nil, new(MockGenerator), logging.Nop()).Answer(context.Background(), "q", nil)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("retrieval", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("Retrieve", mock.Anything, "q", DefaultK).Return(nil, errors.New("db down"))

		_, err := NewEngine(retriever, new(MockGenerator), logging.Nop()).Answer(context.Background(), "q", nil)
		assert.ErrorIs(t, err, ErrGeneration)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("generation", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("Retrieve", mock.Anything, "q", DefaultK).Return([]recommend.ScoredRecipe{}, nil)
		generator := new(MockGenerator)
		generator.On("Generate", mock.Anything, systemPrompt, []recommend.Turn(nil), "q").
			Return("", errors.New("quota"))

		_, err := NewEngine(retriever, generator, logging.Nop()).Answer(context.Background(), "q", nil)
		assert.ErrorIs(t, err, ErrGeneration)
	})
}

func TestGeminiGeneratorBreaker(t *testing.T) {
	calls := 0
	g := newGeminiGenerator(func(context.Context, string, []recommend.Turn, string) (string, error) {
		calls++
		return "", errors.New("503 from upstream")
	})

	for i := 0; i < 5; i++ {
		_, err := g.Generate(context.Background(), "sys", nil, "q")
		require.Error(t, err)
	}
	_, err := g.Generate(context.Background(), "sys", nil, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, 5, calls)
}

func TestGeminiGeneratorPassesThrough(t *testing.T) {
	g := newGeminiGenerator(func(_ context.Context, system string, history []recommend.Turn, prompt string) (string, error) {
		return system + "|" + prompt + "|" + history[0].Content, nil
	})
	out, err := g.Generate(context.Background(), "sys", []recommend.Turn{{Role: recommend.RoleUser, Content: "h"}}, "q")
	require.NoError(t, err)
	assert.Equal(t, "sys|q|h", out)
}

func TestToContents(t *testing.T) {
	got := toContents([]recommend.Turn{
		{Role: recommend.RoleUser, Content: "make soup"},
		{Role: recommend.RoleBot, Content: "here is soup"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("here is soup")}, got[1].Parts)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Tomato "), genai.Text("soup")}},
	}}}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Tomato soup", text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}
