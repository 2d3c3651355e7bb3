package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/chefai/backend/internal/middleware"
	"github.com/pageza/chefai/backend/internal/models"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(token string) (*middleware.TokenClaims, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

// IPantryService defines the interface for pantry operations
type IPantryService interface {
	Add(ctx context.Context, userID uuid.UUID, in PantryInput) (*models.PantryItem, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteByName(ctx context.Context, userID uuid.UUID, name string) error
}

// ISettingsService defines the interface for user settings
type ISettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Put(ctx context.Context, userID uuid.UUID, in SettingsInput) (*models.UserSettings, error)
}

// IFavoriteService defines the interface for saved recipes
type IFavoriteService interface {
	Add(ctx context.Context, userID uuid.UUID, in FavoriteInput) (*models.FavoriteRecipe, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRecipe, error)
	Delete(ctx context.Context, userID, favoriteID uuid.UUID) error
}

// IRecipeService defines the interface for the recipe corpus
type IRecipeService interface {
	recommend.RecipeStore
	Create(ctx context.Context, in CreateRecipeInput) (*models.Recipe, error)
	Embedded(ctx context.Context) ([]EmbeddedRecipe, error)
	BackfillEmbeddings(ctx context.Context) (int, error)
}
