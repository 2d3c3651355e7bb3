// Package seed loads the starter recipe corpus.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/models"
	"github.com/pageza/chefai/backend/internal/service"
)

//go:embed recipes.yaml
var defaultCorpus []byte

type corpusFile struct {
	Recipes []service.CreateRecipeInput `yaml:"recipes"`
}

// Parse reads a YAML corpus file.
func Parse(data []byte) ([]service.CreateRecipeInput, error) {
	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(file.Recipes) == 0 {
		return nil, errors.New("corpus has no recipes")
	}
	return file.Recipes, nil
}

// Default returns the built-in corpus.
func Default() ([]service.CreateRecipeInput, error) {
	return Parse(defaultCorpus)
}

// Seeder inserts corpus recipes that are not stored yet.
type Seeder struct {
	db      *gorm.DB
	recipes service.IRecipeService
	logger  zerolog.Logger
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewSeeder(db *gorm.DB, recipes service.IRecipeService, logger zerolog.Logger) *Seeder {
	return &Seeder{db: db, recipes: recipes, logger: logger}
}

// Run creates every recipe whose title is not in the database yet, then embeds any stored recipe
// still lacking an embedding. It returns how many recipes were created.
func (s *Seeder) Run(ctx context.Context, inputs []service.CreateRecipeInput) (int, error) {
	created := 0
	for _, in := range inputs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("title = ?", in.Title).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			s.logger.Debug().Str("title", in.Title).Msg("recipe already present")
			continue
		}
		if _, err := s.recipes.Create(ctx, in); err != nil {
			return created, fmt.Errorf("create %q: %w", in.Title, err)
		}
		created++
	}

	embedded, err := s.recipes.BackfillEmbeddings(ctx)
	if err != nil {
		return created, fmt.Errorf("backfill embeddings: %w", err)
	}
	s.logger.Info().Int("created", created).Int("embedded", embedded).Msg("corpus seeded")
	return created, nil
}
