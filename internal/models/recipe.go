package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/recommend"
)

// Recipe is a corpus entry. Embedding is nil until the seeder or the recipe service computes it.
type Recipe struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Instructions  string           `gorm:"type:text;not null" json:"instructions"`
	PrepTime      int              `gorm:"default:30" json:"prep_time"`
	Servings      int              `gorm:"default:4" json:"servings"`
	CookingMethod string           `gorm:"size:50;default:'any'" json:"cooking_method"`
	Diet          string           `gorm:"size:50;default:'any'" json:"diet"`
	Embedding     *pgvector.Vector `gorm:"type:vector" json:"-"`
	CreatedAt     time.Time        `json:"created_at"`

	RecipeIngredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Domain converts the row into the pipeline's Recipe.
func (r Recipe) Domain() recommend.Recipe {
	names := make([]string, 0, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		if ri.Ingredient != nil {
			names = append(names, ri.Ingredient.Name)
		}
	}
	return recommend.Recipe{
		ID:            r.ID,
		Title:         r.Title,
		Instructions:  r.Instructions,
		PrepTime:      r.PrepTime,
		Servings:      r.Servings,
		CookingMethod: r.CookingMethod,
		Diet:          r.Diet,
		Ingredients:   names,
	}
}

type Ingredient struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Category string `gorm:"size:50" json:"category"`
}

type RecipeIngredient struct {
	RecipeID     int64       `gorm:"primaryKey" json:"recipe_id"`
	IngredientID int64       `gorm:"primaryKey" json:"ingredient_id"`
	Quantity     float64     `gorm:"default:1" json:"quantity"`
	Unit         string      `gorm:"size:20;default:'unit'" json:"unit"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
}

// FavoriteRecipe is a snapshot of a recipe a user saved, from any source.
type FavoriteRecipe struct {
	ID             uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title          string           `gorm:"size:255;not null" json:"title"`
	Image          string           `gorm:"size:512" json:"image,omitempty"`
	ReadyInMinutes int              `json:"ready_in_minutes"`
	Servings       int              `json:"servings"`
	Ingredients    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions   string           `gorm:"type:text" json:"instructions"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (f *FavoriteRecipe) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// All lists every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserSettings{},
		&PantryItem{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&FavoriteRecipe{},
	}
}
