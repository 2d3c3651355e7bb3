package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pageza/chefai/backend/internal/metrics"
	"github.com/pageza/chefai/backend/internal/online"
	"github.com/pageza/chefai/backend/internal/rag"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// PantrySource lists the names of a user's pantry items.
type PantrySource interface {
	PantryNames(ctx context.Context, userID uuid.UUID) (staples, extras []string, err error)
}

// Answerer is the retrieval-augmented generator. *rag.Engine implements it.
type Answerer interface {
	Available() bool
	Answer(ctx context.Context, query string, history []recommend.Turn) (*rag.Answer, error)
}

// OnlineSearcher finds recipes on a remote service.
type OnlineSearcher interface {
	FindByIngredients(ctx context.Context, ingredients []string, number int) ([]online.Recipe, error)
}

// ImageFinder returns a picture URL for a recipe, or "".
type ImageFinder interface {
	FetchForRecipe(ctx context.Context, query string) string
}

// Deps are the collaborators of a Service. Only Engine, Recipes and Profiles are required;
// a nil RAG, History, Pantry, Online or Images disables or degrades the matching feature.
type Deps struct {
	Engine   *recommend.Engine
	Recipes  recommend.RecipeStore
	Profiles recommend.ProfileStore
	Pantry   PantrySource
	RAG      Answerer
	History  HistoryStore
	Online   OnlineSearcher
	Images   ImageFinder
}

// Service answers chat requests.
type Service struct {
	deps   Deps
	now    func() time.Time
	logger zerolog.Logger
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewService(deps Deps, logger zerolog.Logger) *Service {
	return &Service{
		deps:   deps,
		now:    time.Now,
		logger: logger.With().Str("component", "chat").Logger(),
	}
}

// Handle answers req for userID with the strategy named by req.Mode (rule when empty).
func (s *Service) Handle(ctx context.Context, userID uuid.UUID, req Request) (*Response, error) {
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModeRule
	}
	query := strings.TrimSpace(req.Query)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var (
		resp *Response
		err  error
	)
	switch mode {
	case ModeRule:
		resp, err = s.rule(ctx, userID, query)
	case ModeRAG:
		resp, err = s.rag(ctx, userID, sessionID, query)
	case ModeOnline:
		resp, err = s.online(ctx, userID)
	default:
		return nil, ErrInvalidMode
	}
	if err != nil {
		return nil, err
	}

	metrics.ChatRequests.WithLabelValues(mode).Inc()
	resp.Mode = mode
	resp.SessionID = sessionID
	resp.Timestamp = s.now().UTC()
	if resp.Recommendations == nil {
		resp.Recommendations = []RecipeDetail{}
	}
	if resp.History == nil {
		resp.History = []recommend.Turn{}
	}
	return resp, nil
}

func (s *Service) rule(ctx context.Context, userID uuid.UUID, query string) (*Response, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	corpus, err := s.deps.Recipes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	profile, err := s.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	res, err := s.deps.Engine.HandleRuleQuery(ctx, query, profile, corpus)
	if err != nil {
		return nil, err
	}
	return &Response{
		Message:         res.Message,
		Recommendations: details(res.Recommendations, fromCorpus),
		History:         res.History,
		Intent:          string(res.Intent),
	}, nil
}

func (s *Service) rag(ctx context.Context, userID uuid.UUID, sessionID, query string) (*Response, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.deps.RAG == nil || !s.deps.RAG.Available() {
		return nil, ErrRAGUnavailable
	}

	history := []recommend.Turn{}
	if s.deps.History != nil {
		recent, err := s.deps.History.Recent(ctx, sessionID, historyTurns)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load chat history")
		} else {
			history = turns(recent)
		}
	}

	answer, err := s.deps.RAG.Answer(ctx, query, history)
	if err != nil {
		s.logger.Error().Err(err).Msg("rag answer failed")
		if errors.Is(err, rag.ErrUnavailable) {
			return nil, ErrRAGUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrRAGUnavailable, err)
	}

	if s.deps.History != nil {
		in := Interaction{UserID: userID.String(), Query: query, Response: answer.Text, Timestamp: s.now().UTC()}
		if err := s.deps.History.Save(ctx, sessionID, in); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save chat history")
		}
	}

	return &Response{
		Message:         answer.Text,
		Recommendations: details(answer.Sources, fromCorpus),
		History:         history,
	}, nil
}

func (s *Service) online(ctx context.Context, userID uuid.UUID) (*Response, error) {
	var pantry []string
	if s.deps.Pantry != nil {
		staples, extras, err := s.deps.Pantry.PantryNames(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load pantry: %w", err)
		}
		pantry = append(staples, extras...)
	}
	if len(pantry) == 0 {
		return &Response{Message: MsgEmptyPantry}, nil
	}
	if s.deps.Online == nil {
		return nil, fmt.Errorf("%w: online search not configured", ErrUpstream)
	}

	found, err := s.deps.Online.FindByIngredients(ctx, pantry, onlineResults)
	if err != nil {
		s.logger.Error().Err(err).Msg("online recipe search failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	msg := MsgNoneOnline
	if len(found) > 0 {
		msg = fmt.Sprintf("I found %d recipes online!", len(found))
	}
	return &Response{Message: msg, Recommendations: details(found, fromOnline)}, nil
}
