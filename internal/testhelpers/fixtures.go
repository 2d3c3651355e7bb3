package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/models"
)

// TestPassword is the plain-text password of users made by CreateUser.
const TestPassword = "testpassword123"

// CreateUser inserts an active user whose password is TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// RecipeFixture describes a corpus recipe for CreateRecipes.
type RecipeFixture struct {
	Title         string
	Instructions  string
	PrepTime      int
	Servings      int
	CookingMethod string
	Diet          string
	Ingredients   []string
}

// CreateRecipes inserts recipes with their ingredients, sharing ingredient rows by name.
func CreateRecipes(t *testing.T, db *gorm.DB, fixtures ...RecipeFixture) []models.Recipe {
	t.Helper()

	out := make([]models.Recipe, 0, len(fixtures))
	for _, f := range fixtures {
		recipe := models.Recipe{
			Title:         f.Title,
			Instructions:  f.Instructions,
			PrepTime:      f.PrepTime,
			Servings:      f.Servings,
			CookingMethod: f.CookingMethod,
			Diet:          f.Diet,
		}
		for _, name := range f.Ingredients {
			ing := models.Ingredient{Name: name}
			if err := db.Where(models.Ingredient{Name: name}).FirstOrCreate(&ing).Error; err != nil {
				t.Fatalf("failed to create ingredient %s: %v", name, err)
			}
			recipe.RecipeIngredients = append(recipe.RecipeIngredients, models.RecipeIngredient{
				IngredientID: ing.ID,
				Quantity:     1,
				Unit:         "unit",
			})
		}
		if err := db.Create(&recipe).Error; err != nil {
			t.Fatalf("failed to create recipe %s: %v", f.Title, err)
		}
		out = append(out, recipe)
	}
	return out
}
