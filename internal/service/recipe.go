package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/models"
	"github.com/pageza/chefai/backend/internal/recommend"
)

type IngredientInput struct {
	Name     string  `yaml:"name" json:"name"`
	Category string  `yaml:"category" json:"category"`
	Quantity float64 `yaml:"quantity" json:"quantity"`
	Unit     string  `yaml:"unit" json:"unit"`
}

type CreateRecipeInput struct {
	Title         string            `yaml:"title" json:"title"`
	Instructions  string            `yaml:"instructions" json:"instructions"`
	PrepTime      int               `yaml:"prep_time" json:"prep_time"`
	Servings      int               `yaml:"servings" json:"servings"`
	CookingMethod string            `yaml:"cooking_method" json:"cooking_method"`
	Diet          string            `yaml:"diet" json:"diet"`
	Ingredients   []IngredientInput `yaml:"ingredients" json:"ingredients"`
}

// EmbeddedRecipe is a corpus recipe together with its stored embedding.
type EmbeddedRecipe struct {
	Recipe recommend.Recipe
	Vector []float32
}

// RecipeService owns the recipe corpus. The embedder is optional; without it recipes are stored
// without embeddings.
type RecipeService struct {
	db       *gorm.DB
	embedder recommend.TextEmbedder
	logger   zerolog.Logger
}

var _ IRecipeService = (*RecipeService)(nil)

//nolint:gocritic // zerolog.Logger is passed by value
func NewRecipeService(db *gorm.DB, embedder recommend.TextEmbedder, logger zerolog.Logger) *RecipeService {
	return &RecipeService{
		db:       db,
		embedder: embedder,
		logger:   logger.With().Str("component", "recipes").Logger(),
	}
}

// GetAll returns the whole corpus ordered by id.
func (s *RecipeService) GetAll(ctx context.Context) ([]recommend.Recipe, error) {
	var rows []models.Recipe
	if err := s.db.WithContext(ctx).
		Preload("RecipeIngredients.Ingredient").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	out := make([]recommend.Recipe, len(rows))
	for i, r := range rows {
		out[i] = r.Domain()
	}
	return out, nil
}

// Create stores a recipe, creating missing ingredients by name.
func (s *RecipeService) Create(ctx context.Context, in CreateRecipeInput) (*models.Recipe, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Instructions) == "" {
		return nil, fmt.Errorf("%w: title and instructions are required", ErrInvalidInput)
	}

	recipe := models.Recipe{
		Title:         strings.TrimSpace(in.Title),
		Instructions:  strings.TrimSpace(in.Instructions),
		PrepTime:      in.PrepTime,
		Servings:      in.Servings,
		CookingMethod: in.CookingMethod,
		Diet:          in.Diet,
	}
	if vec := s.embed(ctx, recipe.Domain().Document()); vec != nil {
		recipe.Embedding = vec
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[int64]bool)
		for _, item := range in.Ingredients {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				continue
			}
			var ing models.Ingredient
			if err := tx.Where(models.Ingredient{Name: name}).
				Attrs(models.Ingredient{Category: item.Category}).
				FirstOrCreate(&ing).Error; err != nil {
				return fmt.Errorf("failed to create ingredient %q: %w", name, err)
			}
			if seen[ing.ID] {
				continue
			}
			seen[ing.ID] = true
			recipe.RecipeIngredients = append(recipe.RecipeIngredients, models.RecipeIngredient{
				IngredientID: ing.ID,
				Quantity:     item.Quantity,
				Unit:         item.Unit,
				Ingredient:   &ing,
			})
		}
		return tx.Create(&recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Embedded returns every recipe that has an embedding.
func (s *RecipeService) Embedded(ctx context.Context) ([]EmbeddedRecipe, error) {
	var rows []models.Recipe
	if err := s.db.WithContext(ctx).
		Preload("RecipeIngredients.Ingredient").
		Where("embedding IS NOT NULL").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load embedded recipes: %w", err)
	}
	out := make([]EmbeddedRecipe, 0, len(rows))
	for _, r := range rows {
		if r.Embedding == nil {
			continue
		}
		out = append(out, EmbeddedRecipe{Recipe: r.Domain(), Vector: r.Embedding.Slice()})
	}
	return out, nil
}

// BackfillEmbeddings computes embeddings for recipes stored without one and returns how many
// were updated.
func (s *RecipeService) BackfillEmbeddings(ctx context.Context) (int, error) {
	if s.embedder == nil {
		return 0, errors.New("no embedder configured")
	}
	var rows []models.Recipe
	if err := s.db.WithContext(ctx).Where("embedding IS NULL").Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		vec, err := s.embedder.Encode(ctx, r.Domain().Document())
		if err != nil {
			return updated, fmt.Errorf("failed to embed recipe %d: %w", r.ID, err)
		}
		v := pgvector.NewVector(vec)
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("id = ?", r.ID).
			Update("embedding", &v).Error; err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *RecipeService) embed(ctx context.Context, text string) *pgvector.Vector {
	if s.embedder == nil {
		return nil
	}
	vec, err := s.embedder.Encode(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("storing recipe without embedding")
		return nil
	}
	v := pgvector.NewVector(vec)
	return &v
}
