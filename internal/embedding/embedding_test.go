package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/recommend"
)

// MockCache is a testify mock for Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// MockEmbedder is a testify mock for recommend.TextEmbedder.
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

func TestHashEmbedderDeterministic(t *testing.T) {
	h := NewHashEmbedder(64)

	a, err := h.Encode(context.Background(), "Tomato soup with basil")
	require.NoError(t, err)
	b, err := h.Encode(context.Background(), "tomato SOUP, with basil!")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, recommend.CosineSimilarity(a, b), 1e-6)
}

func TestHashEmbedderSimilarity(t *testing.T) {
	h := NewHashEmbedder(0)
	ctx := context.Background()

	q, _ := h.Encode(ctx, "spicy chicken curry")
	near, _ := h.Encode(ctx, "Chicken curry. Simmer the chicken in a spicy sauce.")
	far, _ := h.Encode(ctx, "Lemon cake. Whisk eggs and sugar, then bake.")

	assert.Len(t, q, DefaultHashDim)
	assert.Greater(t, recommend.CosineSimilarity(q, near), recommend.CosineSimilarity(q, far))
}

func TestHashEmbedderEmptyText(t *testing.T) {
	v, err := NewHashEmbedder(8).Encode(context.Background(), "  ...  ")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), v)
	assert.Equal(t, "hash-8", NewHashEmbedder(8).Name())
}

func TestGeminiEmbedderWrapsFailures(t *testing.T) {
	calls := 0
	g := newGeminiEmbedder("test-model", func(context.Context, string) ([]float32, error) {
		calls++
		return nil, errors.New("quota exceeded")
	})

	for i := 0; i < 5; i++ {
		_, err := g.Encode(context.Background(), "soup")
		assert.ErrorIs(t, err, recommend.ErrModelUnavailable)
	}

	_, err := g.Encode(context.Background(), "soup")
	assert.ErrorIs(t, err, recommend.ErrModelUnavailable)
	assert.Contains(t, err.Error(), gobreaker.ErrOpenState.Error())
	assert.Equal(t, 5, calls, "open breaker short-circuits the remote call")
	assert.Equal(t, "gemini/test-model", g.Name())
}

func TestGeminiEmbedderSuccess(t *testing.T) {
	g := newGeminiEmbedder("test-model", func(_ context.Context, text string) ([]float32, error) {
		return []float32{float32(len(text)), 1}, nil
	})

	v, err := g.Encode(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1}, v)
	assert.NoError(t, g.Close())
}

func TestCachedEmbedderHit(t *testing.T) {
	cache := new(MockCache)
	inner := new(MockEmbedder)
	c := NewCachedEmbedder(inner, cache, time.Hour, zerolog.Nop())
	key := c.Key("soup")

	cache.On("Get", mock.Anything, key).Return("[0.5,1,-2]", nil)

	v, err := c.Encode(context.Background(), "soup")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1, -2}, v)
	inner.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestCachedEmbedderMissWritesThrough(t *testing.T) {
	cache := new(MockCache)
	inner := new(MockEmbedder)
	c := NewCachedEmbedder(inner, cache, time.Hour, zerolog.Nop())
	key := c.Key("soup")

	cache.On("Get", mock.Anything, key).Return("", ErrCacheMiss)
	inner.On("Encode", mock.Anything, "soup").Return([]float32{1, 2}, nil)
	cache.On("Set", mock.Anything, key, "[1,2]", time.Hour).Return(nil)

	v, err := c.Encode(context.Background(), "soup")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, v)
	cache.AssertExpectations(t)
	inner.AssertExpectations(t)
}

func TestCachedEmbedderSurvivesCacheFailures(t *testing.T) {
	cache := new(MockCache)
	inner := new(MockEmbedder)
	c := NewCachedEmbedder(inner, cache, time.Minute, zerolog.Nop())

	cache.On("Get", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	inner.On("Encode", mock.Anything, "stew").Return([]float32{3}, nil)

	v, err := c.Encode(context.Background(), "stew")

	require.NoError(t, err)
	assert.Equal(t, []float32{3}, v)
}

func TestCachedEmbedderDiscardsCorruptEntries(t *testing.T) {
	cache := new(MockCache)
	inner := new(MockEmbedder)
	c := NewCachedEmbedder(inner, cache, time.Minute, zerolog.Nop())

	cache.On("Get", mock.Anything, mock.Anything).Return("not a vector", nil)
	cache.On("Set", mock.Anything, mock.Anything, "[4]", time.Minute).Return(nil)
	inner.On("Encode", mock.Anything, "stew").Return([]float32{4}, nil)

	v, err := c.Encode(context.Background(), "stew")

	require.NoError(t, err)
	assert.Equal(t, []float32{4}, v)
	cache.AssertExpectations(t)
}

func TestCachedEmbedderPropagatesInnerError(t *testing.T) {
	cache := new(MockCache)
	inner := new(MockEmbedder)
	c := NewCachedEmbedder(inner, cache, time.Minute, zerolog.Nop())

	cache.On("Get", mock.Anything, mock.Anything).Return("", ErrCacheMiss)
	inner.On("Encode", mock.Anything, "stew").Return(nil, recommend.ErrModelUnavailable)

	_, err := c.Encode(context.Background(), "stew")

	assert.ErrorIs(t, err, recommend.ErrModelUnavailable)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheKeyDependsOnModel(t *testing.T) {
	a := NewCachedEmbedder(NewHashEmbedder(8), new(MockCache), time.Minute, zerolog.Nop())
	b := NewCachedEmbedder(NewHashEmbedder(16), new(MockCache), time.Minute, zerolog.Nop())

	assert.Equal(t, "hash-8", a.Name())
	assert.NotEqual(t, a.Key("soup"), b.Key("soup"))
	assert.Equal(t, a.Key("soup"), a.Key("soup"))
}
