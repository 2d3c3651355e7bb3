// Package chat dispatches a user's chat message to one of three strategies: the rule pipeline
// over the local corpus, retrieval-augmented generation, or an online recipe search. It also
// hosts the constraint cooking flow.
package chat

import (
	"errors"
	"time"

	"github.com/pageza/chefai/backend/internal/online"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// Chat modes.
const (
	ModeRule   = "rule"
	ModeRAG    = "rag"
	ModeOnline = "online"
)

const (
	onlineResults = 5
	historyTurns  = 10
)

// Fixed replies.
const (
	MsgEmptyPantry = "Your pantry is empty. Add ingredients first."
	MsgNoneOnline  = "No recipes found."
)

var (
	ErrInvalidMode    = errors.New("invalid mode; must be rule, rag or online")
	ErrEmptyQuery     = errors.New("query must not be empty")
	ErrRAGUnavailable = errors.New("RAG service unavailable")
	ErrUpstream       = errors.New("couldn't fetch recipes right now")
	ErrGeneration     = errors.New("failed to generate recipe")
)

// Request is one chat message.
type Request struct {
	Query     string `json:"query"`
	Mode      string `json:"mode"`
	SessionID string `json:"session_id"`
}

// RecipeDetail is a recommendation as the client sees it, whichever strategy produced it.
type RecipeDetail struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Image          *string  `json:"image"`
	Ingredients    []string `json:"ingredients"`
	Instructions   string   `json:"instructions"`
	ReadyInMinutes int      `json:"ready_in_minutes"`
	Servings       int      `json:"servings"`
}

// Response is the reply to a Request.
type Response struct {
	Message         string           `json:"message"`
	Recommendations []RecipeDetail   `json:"recommendations"`
	SessionID       string           `json:"session_id"`
	Timestamp       time.Time        `json:"timestamp"`
	History         []recommend.Turn `json:"history"`
	Mode            string           `json:"mode"`
	Intent          string           `json:"intent,omitempty"`
}

func fromCorpus(r recommend.Recipe) RecipeDetail {
	r = r.WithDefaults()
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return RecipeDetail{
		ID:             r.ID,
		Title:          r.Title,
		Ingredients:    ingredients,
		Instructions:   r.Instructions,
		ReadyInMinutes: r.PrepTime,
		Servings:       r.Servings,
	}
}

func fromOnline(r online.Recipe) RecipeDetail {
	d := RecipeDetail{
		ID:             r.ID,
		Title:          r.Title,
		Ingredients:    r.Ingredients,
		Instructions:   r.Instructions,
		ReadyInMinutes: r.ReadyInMinutes,
		Servings:       r.Servings,
	}
	if r.Image != "" {
		image := r.Image
		d.Image = &image
	}
	if d.Ingredients == nil {
		d.Ingredients = []string{}
	}
	return d
}

func details[T any](items []T, convert func(T) RecipeDetail) []RecipeDetail {
	out := make([]RecipeDetail, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}
