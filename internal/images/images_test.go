package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/logging"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStore) URL(key string) string {
	return "https://bucket.example/" + key
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 80, B: 40, A: uint8(x % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tomato Soup food recipe dish", "tomato-soup-food-recipe-dish.jpg"},
		{"  Crème brûlée!! -- deluxe ", "crme-brle-deluxe.jpg"},
		{"???", "recipe.jpg"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50) + ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeKey(tt.in))
		})
	}
}

func TestExtractImageURLs(t *testing.T) {
	t.Run("script urls win", func(t *testing.T) {
		page := `<html><body>
			<script>var data = {"ou":"https://cdn.example/a.jpg","ow":1}; x = {"ou":"https://cdn.example/b=1.png"};</script>
			<img src="https://other.example/c.jpg">
		</body></html>`
		got := ExtractImageURLs(strings.NewReader(page), 3)
		assert.Equal(t, []string{"https://cdn.example/a.jpg", "https://cdn.example/b=1.png"}, got)
	})

	t.Run("img fallback skips google and non images", func(t *testing.T) {
		page := `<html><body>
			<img src="https://www.google.com/logo.png">
			<img src="/relative.jpg">
			<img src="https://cdn.example/page.html">
			<img src="https://cdn.example/one.jpeg">
			<img src="https://cdn.example/two.webp">
		</body></html>`
		got := ExtractImageURLs(strings.NewReader(page), 1)
		assert.Equal(t, []string{"https://cdn.example/one.jpeg"}, got)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("wide image is scaled to 800", func(t *testing.T) {
		out, err := Normalize(encodePNG(t, 1600, 400))
		require.NoError(t, err)

		img, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 800, img.Bounds().Dx())
		assert.Equal(t, 200, img.Bounds().Dy())
	})

	t.Run("small image keeps its size", func(t *testing.T) {
		out, err := Normalize(encodePNG(t, 120, 90))
		require.NoError(t, err)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 120, cfg.Width)
		assert.Equal(t, 90, cfg.Height)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Normalize([]byte("not an image"))
		assert.Error(t, err)
	})
}

func newImageServer(t *testing.T, pngData []byte) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprintf(w, `<html><body><img src="%s/missing.jpg"><img src="%s/dish.png"></body></html>`, srv.URL, srv.URL)
		case "/dish.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngData)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchForRecipe(t *testing.T) {
	srv := newImageServer(t, encodePNG(t, 1000, 500))
	store := newMemStore()
	svc := NewService(store, logging.Nop(), WithSearchURL(srv.URL+"/search?q="))

	url := svc.FetchForRecipe(context.Background(), "Tomato Soup food recipe dish")
	assert.Equal(t, "https://bucket.example/recipe-images/tomato-soup-food-recipe-dish.jpg", url)

	stored := store.objects["recipe-images/tomato-soup-food-recipe-dish.jpg"]
	require.NotEmpty(t, stored)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
}

func TestFetchForRecipeExistingObject(t *testing.T) {
	store := newMemStore()
	store.objects["recipe-images/omelette.jpg"] = []byte("cached")
	svc := NewService(store, logging.Nop(), WithSearchURL("http://127.0.0.1:0/never?q="))

	assert.Equal(t, "https://bucket.example/recipe-images/omelette.jpg", svc.FetchForRecipe(context.Background(), "Omelette"))
}

func TestFetchForRecipeFailures(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body>nothing here</body></html>`)
		}))
		defer srv.Close()

		svc := NewService(newMemStore(), logging.Nop(), WithSearchURL(srv.URL+"/search?q="))
		assert.Empty(t, svc.FetchForRecipe(context.Background(), "Soup"))
	})

	t.Run("upload fails", func(t *testing.T) {
		srv := newImageServer(t, encodePNG(t, 50, 50))
		store := newMemStore()
		store.putErr = errors.New("access denied")

		svc := NewService(store, logging.Nop(), WithSearchURL(srv.URL+"/search?q="))
		assert.Empty(t, svc.FetchForRecipe(context.Background(), "Soup"))
	})

	t.Run("no store", func(t *testing.T) {
		svc := NewService(nil, logging.Nop())
		assert.Empty(t, svc.FetchForRecipe(context.Background(), "Soup"))
	})
}
