package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/api"
	"github.com/pageza/chefai/backend/internal/chat"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/embedding"
	"github.com/pageza/chefai/backend/internal/images"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/middleware"
	"github.com/pageza/chefai/backend/internal/nlp"
	"github.com/pageza/chefai/backend/internal/online"
	"github.com/pageza/chefai/backend/internal/rag"
	"github.com/pageza/chefai/backend/internal/recommend"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/pageza/chefai/backend/internal/store"
)

const (
	historyTTL    = 24 * time.Hour
	historyLength = 10
)

// Dependencies is the wired object graph behind the API.
type Dependencies struct {
	Services api.Services
	Redis    *redis.Client

	closers []io.Closer
}

// Close releases network clients in reverse order of creation.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	d.closers = nil
	return errors.Join(errs...)
}

// Build wires every service. Redis, Gemini, Spoonacular and S3 are optional; without them the
// features that need them report themselves unavailable.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	logger := logging.With("server")
	deps := &Dependencies{}

	if cfg.RedisURL != "" || cfg.RedisHost != "" {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; running without cache, chat history and shared rate limits")
		} else {
			deps.Redis = client
			deps.closers = append(deps.closers, client)
		}
	}

	registry := recommend.NewModelRegistry(func(ctx context.Context) (recommend.Models, error) {
		language, err := LoadLanguageModel(cfg)
		if err != nil {
			return recommend.Models{}, err
		}
		embedder, closer, err := NewEmbedder(ctx, cfg, deps.Redis)
		if err != nil {
			return recommend.Models{}, err
		}
		if closer != nil {
			deps.closers = append(deps.closers, closer)
		}
		return recommend.Models{Language: language, Embedder: embedder}, nil
	})
	models, err := registry.Get(ctx)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("load models: %w", err)
	}

	recipes := service.NewRecipeService(db, models.Embedder, logging.With("recipes"))
	profiles := service.NewProfileService(db)

	var corpus recommend.RecipeStore = recipes
	var retriever rag.Retriever = rag.NewMemoryRetriever(models.Embedder, recipes)
	if cfg.DBDriver == config.DriverPostgres {
		sqlDB, err := store.Connect(ctx, cfg.DSN())
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("connect corpus reader: %w", err)
		}
		deps.closers = append(deps.closers, sqlDB)
		reader := store.NewCorpusReader(sqlDB)
		corpus = reader
		retriever = rag.NewVectorRetriever(models.Embedder, reader)
	}

	var generator rag.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := rag.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiChatModel)
		if err != nil {
			logger.Warn().Err(err).Msg("gemini generator unavailable; rag mode disabled")
		} else {
			generator = gen
			deps.closers = append(deps.closers, gen)
		}
	} else {
		logger.Info().Msg("no gemini api key; rag mode disabled")
	}

	chatDeps := chat.Deps{
		Engine:   recommend.NewEngine(models, logging.With("recommend")),
		Recipes:  corpus,
		Profiles: profiles,
		Pantry:   profiles,
		RAG:      rag.NewEngine(retriever, generator, logging.With("rag")),
		Online:   online.NewClient(cfg.SpoonacularAPIKey, cfg.SpoonacularBaseURL, logging.With("spoonacular")),
	}
	if deps.Redis != nil {
		chatDeps.History = chat.NewRedisHistory(deps.Redis, historyTTL, historyLength)
	}
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("s3 unavailable; recipe images disabled")
		} else {
			if err := s3cfg.SetupBucketPolicy(ctx, images.KeyPrefix); err != nil {
				logger.Warn().Err(err).Str("bucket", s3cfg.BucketName).Msg("could not make recipe images public")
			}
			chatDeps.Images = images.NewService(images.NewS3Store(s3cfg), logging.With("images"))
		}
	}

	var counter middleware.Counter
	if deps.Redis != nil {
		counter = middleware.NewRedisCounter(deps.Redis)
	}
	limiter := middleware.NewRateLimiter(counter, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     cfg.RateLimitPerMinute,
		KeyPrefix: "rate_limit:chat",
	})

	deps.Services = api.Services{
		Auth:      service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL),
		Pantry:    service.NewPantryService(db),
		Settings:  service.NewSettingsService(db),
		Favorites: service.NewFavoriteService(db),
		Chat:      chat.NewService(chatDeps, logging.With("chat")),
		ChatLimit: limiter.RateLimitMiddleware(),
	}
	return deps, nil
}

// LoadLanguageModel reads the lexicon named by cfg, or the built-in one.
func LoadLanguageModel(cfg *config.Config) (*nlp.Model, error) {
	return nlp.Load(cfg.LexiconPath)
}

// NewEmbedder returns the Gemini embedder when a key is configured and the hashing embedder
// otherwise, behind a Redis cache when one is given. The closer is nil when nothing needs closing.
func NewEmbedder(ctx context.Context, cfg *config.Config, client *redis.Client) (recommend.TextEmbedder, io.Closer, error) {
	var (
		embedder recommend.TextEmbedder = embedding.NewHashEmbedder(0)
		closer   io.Closer
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err := embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		embedder, closer = gemini, gemini
	}
	if client != nil {
		embedder = embedding.NewCachedEmbedder(embedder, embedding.NewRedisCache(client), cfg.EmbeddingCacheTTL, logging.With("embedding"))
	}
	return embedder, closer, nil
}
