// Package store reads the recipe corpus with plain SQL, bypassing the ORM for the hot read path.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/chefai/backend/internal/recommend"
)

const corpusQuery = `
SELECT r.id, r.title, r.instructions, r.prep_time, r.servings, r.cooking_method, r.diet,
       i.name AS ingredient
FROM recipes r
LEFT JOIN recipe_ingredients ri ON ri.recipe_id = r.id
LEFT JOIN ingredients i ON i.id = ri.ingredient_id
ORDER BY r.id, i.name`

const nearestQuery = `
WITH nearest AS (
    SELECT id, embedding <=> $1 AS distance
    FROM recipes
    WHERE embedding IS NOT NULL
    ORDER BY distance
    LIMIT $2
)
SELECT r.id, r.title, r.instructions, r.prep_time, r.servings, r.cooking_method, r.diet,
       i.name AS ingredient, n.distance
FROM nearest n
JOIN recipes r ON r.id = n.id
LEFT JOIN recipe_ingredients ri ON ri.recipe_id = r.id
LEFT JOIN ingredients i ON i.id = ri.ingredient_id
ORDER BY n.distance, r.id, i.name`

type corpusRow struct {
	ID            int64           `db:"id"`
	Title         string          `db:"title"`
	Instructions  string          `db:"instructions"`
	PrepTime      sql.NullInt64   `db:"prep_time"`
	Servings      sql.NullInt64   `db:"servings"`
	CookingMethod sql.NullString  `db:"cooking_method"`
	Diet          sql.NullString  `db:"diet"`
	Ingredient    sql.NullString  `db:"ingredient"`
	Distance      sql.NullFloat64 `db:"distance"`
}

// CorpusReader loads recipes and their ingredient names in a single join.
type CorpusReader struct {
	db *sqlx.DB
}

var _ recommend.RecipeStore = (*CorpusReader)(nil)

func NewCorpusReader(db *sqlx.DB) *CorpusReader {
	return &CorpusReader{db: db}
}

// Connect opens a postgres connection for a CorpusReader.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// GetAll returns every recipe ordered by id. NULL columns come back as zero values, which the
// pipeline treats as missing.
func (s *CorpusReader) GetAll(ctx context.Context) ([]recommend.Recipe, error) {
	var rows []corpusRow
	if err := s.db.SelectContext(ctx, &rows, corpusQuery); err != nil {
		return nil, fmt.Errorf("failed to load recipe corpus: %w", err)
	}
	recipes, _ := group(rows)
	return recipes, nil
}

// Nearest returns up to k recipes ordered by cosine distance between their stored embedding and
// vec. Score is the cosine similarity.
func (s *CorpusReader) Nearest(ctx context.Context, vec []float32, k int) ([]recommend.ScoredRecipe, error) {
	if k <= 0 {
		return []recommend.ScoredRecipe{}, nil
	}
	var rows []corpusRow
	if err := s.db.SelectContext(ctx, &rows, nearestQuery, pgvector.NewVector(vec), k); err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	recipes, distances := group(rows)
	out := make([]recommend.ScoredRecipe, len(recipes))
	for i, r := range recipes {
		out[i] = recommend.ScoredRecipe{Recipe: r, Score: 1 - distances[i]}
	}
	return out, nil
}

// group folds one row per (recipe, ingredient) into recipes, keeping row order.
func group(rows []corpusRow) ([]recommend.Recipe, []float64) {
	recipes := make([]recommend.Recipe, 0)
	var distances []float64
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.ID]
		if !ok {
			i = len(recipes)
			index[row.ID] = i
			recipes = append(recipes, recommend.Recipe{
				ID:            row.ID,
				Title:         row.Title,
				Instructions:  row.Instructions,
				PrepTime:      int(row.PrepTime.Int64),
				Servings:      int(row.Servings.Int64),
				CookingMethod: row.CookingMethod.String,
				Diet:          row.Diet.String,
				Ingredients:   []string{},
			})
			distances = append(distances, row.Distance.Float64)
		}
		if row.Ingredient.Valid {
			recipes[i].Ingredients = append(recipes[i].Ingredients, row.Ingredient.String)
		}
	}
	return recipes, distances
}
