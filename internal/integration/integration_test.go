package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/api"
	"github.com/pageza/chefai/backend/internal/chat"
	"github.com/pageza/chefai/backend/internal/embedding"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/seed"
	"github.com/pageza/chefai/backend/internal/server"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/pageza/chefai/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func baseConfig() *config.Config {
	return &config.Config{
		Environment:        config.Test,
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		DBDriver:           config.DriverSQLite,
		JWTSecret:          "integration-secret",
		JWTTTL:             time.Hour,
		CORSOrigins:        []string{"http://localhost:3000"},
		RateLimitPerMinute: 100,
	}
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) call(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

// runScenario seeds the corpus, signs a user up over HTTP, fills the pantry and asks for a dish.
func runScenario(t *testing.T, cfg *config.Config, db *gorm.DB) {
	ctx := context.Background()

	inputs, err := seed.Default()
	require.NoError(t, err)
	recipes := service.NewRecipeService(db, embedding.NewHashEmbedder(0), logging.Nop())
	_, err = seed.NewSeeder(db, recipes, logging.Nop()).Run(ctx, inputs)
	require.NoError(t, err)

	srv, err := server.New(ctx, cfg, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	c := &client{t: t, router: srv.Router()}

	w := c.call(http.MethodPost, "/api/v1/users/register", gin.H{
		"username": "cook", "email": "cook@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.call(http.MethodPost, "/api/v1/users/login", gin.H{"username": "cook", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	c.token = tok.AccessToken

	for _, name := range []string{"tomato", "garlic", "olive oil", "pasta"} {
		w = c.call(http.MethodPost, "/api/v1/pantry", gin.H{"category": "staples", "name": name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = c.call(http.MethodPost, "/api/v1/pantry", gin.H{"category": "herbs", "name": "basil", "temporary": true})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.call(http.MethodPost, "/api/v1/chat", chat.Request{Query: "What can I cook tonight?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp chat.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, chat.ModeRule, resp.Mode)
	assert.Equal(t, "suggest_dish", resp.Intent)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Tomato Basil Pasta", resp.Recommendations[0].Title)
	assert.ElementsMatch(t, []string{"pasta", "tomato", "garlic", "olive oil", "basil"}, resp.Recommendations[0].Ingredients)

	// A vegan diet rules the pasta out
	w = c.call(http.MethodPut, "/api/v1/settings", gin.H{"recommendation": gin.H{"dietary_preference": "vegan"}})
	require.Equal(t, http.StatusOK, w.Code)
	w = c.call(http.MethodPost, "/api/v1/chat", chat.Request{Query: "What can I cook tonight?"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Recommendations)

	w = c.call(http.MethodPost, "/api/v1/chat", chat.Request{Query: "tell me a joke"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Recommendations)
	assert.NotEmpty(t, resp.Message)
}

func TestEndToEndSQLite(t *testing.T) {
	runScenario(t, baseConfig(), testhelpers.SetupSQLite(t))
}

func TestEndToEndPostgres(t *testing.T) {
	db, dsn := testhelpers.SetupPostgres(t)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	password, _ := u.User.Password()

	cfg := baseConfig()
	cfg.DBDriver = config.DriverPostgres
	cfg.DBHost = u.Hostname()
	cfg.DBPort = u.Port()
	cfg.DBUser = u.User.Username()
	cfg.DBPassword = password
	cfg.DBName = u.Path[1:]
	cfg.DBSSLMode = "disable"

	runScenario(t, cfg, db)
}
