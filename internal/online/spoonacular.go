// Package online looks recipes up on Spoonacular by the ingredients a user has.
package online

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pageza/chefai/backend/internal/breaker"
	"github.com/pageza/chefai/backend/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.spoonacular.com"

	defaultReadyInMinutes = 30
	defaultServings       = 4
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("spoonacular api key not configured")
	// ErrUnavailable wraps every failed call to Spoonacular.
	ErrUnavailable = errors.New("spoonacular unavailable")
)

// Recipe is a Spoonacular hit merged with its details.
type Recipe struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Image          string   `json:"image,omitempty"`
	Ingredients    []string `json:"ingredients"`
	Instructions   string   `json:"instructions"`
	ReadyInMinutes int      `json:"ready_in_minutes"`
	Servings       int      `json:"servings"`
}

type hit struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Image           string `json:"image"`
	UsedIngredients []struct {
		Name string `json:"name"`
	} `json:"usedIngredients"`
}

type information struct {
	Instructions   string `json:"instructions"`
	Summary        string `json:"summary"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
}

// Client talks to the Spoonacular REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewClient(apiKey, baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: breaker.New[[]byte](breaker.DefaultConfig("spoonacular")),
		logger:  logger.With().Str("component", "spoonacular").Logger(),
	}
}

// FindByIngredients returns up to number recipes using the given ingredients, each completed
// with its instructions. Hits whose details cannot be fetched are dropped.
func (c *Client) FindByIngredients(ctx context.Context, ingredients []string, number int) ([]Recipe, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("ingredients", strings.Join(ingredients, ","))
	params.Set("number", strconv.Itoa(number))
	params.Set("ranking", "1")
	params.Set("ignorePantry", "false")

	body, err := c.get(ctx, "/recipes/findByIngredients", params)
	if err != nil {
		return nil, err
	}

	var hits []hit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("%w: decode hits: %v", ErrUnavailable, err)
	}

	details := make([]*information, len(hits))
	var wg sync.WaitGroup
	for i := range hits {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := c.details(ctx, hits[i].ID)
			if err != nil {
				c.logger.Error().Err(err).Int64("recipe_id", hits[i].ID).Msg("fetch recipe details")
				return
			}
			details[i] = info
		}(i)
	}
	wg.Wait()

	out := make([]Recipe, 0, len(hits))
	for i, h := range hits {
		info := details[i]
		if info == nil {
			continue
		}
		out = append(out, merge(h, info))
	}
	return out, nil
}

func (c *Client) details(ctx context.Context, id int64) (*information, error) {
	params := url.Values{}
	params.Set("includeNutrition", "false")

	body, err := c.get(ctx, fmt.Sprintf("/recipes/%d/information", id), params)
	if err != nil {
		return nil, err
	}

	var info information
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: decode details: %v", ErrUnavailable, err)
	}
	return &info, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 200))
		}
		return data, nil
	})
	metrics.RecordUpstream("spoonacular", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return body, nil
}

func merge(h hit, info *information) Recipe {
	used := make([]string, 0, len(h.UsedIngredients))
	for _, ing := range h.UsedIngredients {
		used = append(used, ing.Name)
	}

	instructions := info.Instructions
	if instructions == "" {
		instructions = info.Summary
	}
	instructions = strings.NewReplacer("<b>", "", "</b>", "").Replace(instructions)

	ready := info.ReadyInMinutes
	if ready <= 0 {
		ready = defaultReadyInMinutes
	}
	servings := info.Servings
	if servings <= 0 {
		servings = defaultServings
	}

	return Recipe{
		ID:             h.ID,
		Title:          h.Title,
		Image:          h.Image,
		Ingredients:    used,
		Instructions:   instructions,
		ReadyInMinutes: ready,
		Servings:       servings,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
