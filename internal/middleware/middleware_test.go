package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	claims *TokenClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*TokenClaims, error) {
	return s.claims, s.err
}

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name      string
		header    string
		validator stubValidator
		want      int
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer good", stubValidator{claims: &TokenClaims{UserID: userID, Username: "ana"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", AuthMiddleware(tt.validator), func(c *gin.Context) {
				id, ok := UserID(c)
				require.True(t, ok)
				assert.Equal(t, userID, id)
				assert.Equal(t, "ana", c.GetString(ContextUsername))
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := perform(r, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.Contains(t, w.Body.String(), "error")
			}
		})
	}
}

func TestRateLimiterWithCounter(t *testing.T) {
	counter := new(MockCounter)
	rl := NewRateLimiter(counter, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: "test"})
	fixed := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	counter.On("Incr", mock.Anything, "test:1.2.3.4:"+"1714564800", time.Minute).Return(int64(1), nil).Once()
	counter.On("Incr", mock.Anything, mock.Anything, time.Minute).Return(int64(3), nil).Once()

	r := gin.New()
	r.GET("/chat", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.RemoteAddr = "1.2.3.4:5555"

	w := perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1714564860", w.Header().Get("X-RateLimit-Reset"))

	w = perform(r, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	counter.AssertExpectations(t)
}

func TestRateLimiterFallsBackWhenCounterFails(t *testing.T) {
	counter := new(MockCounter)
	counter.On("Incr", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("redis down"))
	rl := NewRateLimiter(counter, RateLimitConfig{Window: time.Hour, Limit: 2})

	ctx := context.Background()
	allowed1, _, _ := rl.IsAllowed(ctx, "u")
	allowed2, _, _ := rl.IsAllowed(ctx, "u")
	allowed3, remaining, _ := rl.IsAllowed(ctx, "u")
	other, _, _ := rl.IsAllowed(ctx, "v")

	assert.True(t, allowed1)
	assert.True(t, allowed2)
	assert.False(t, allowed3)
	assert.Equal(t, 0, remaining)
	assert.True(t, other, "limits are per key")
}

func TestRateLimiterWithoutCounter(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Hour, Limit: 1})

	allowed, _, _ := rl.IsAllowed(context.Background(), "u")
	assert.True(t, allowed)
	allowed, _, _ = rl.IsAllowed(context.Background(), "u")
	assert.False(t, allowed)
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := perform(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", seen)

	w = perform(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), seen)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := perform(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.POST("/api/v1/chat", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := perform(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = perform(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
