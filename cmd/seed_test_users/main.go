package main

import (
	"context"
	"errors"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/models"
	"github.com/pageza/chefai/backend/internal/recommend"
	"github.com/pageza/chefai/backend/internal/service"
)

const testPassword = "testpassword123"

type pantryEntry struct {
	category  string
	name      string
	temporary bool
}

type testUser struct {
	fullName string
	username string
	diet     string
	maxPrep  int
	pantry   []pantryEntry
}

var testUsers = []testUser{
	{
		fullName: "John Doe",
		username: "johndoe",
		diet:     recommend.DefaultDietaryPreference,
		maxPrep:  45,
		pantry: []pantryEntry{
			{"vegetables", "tomato", false},
			{"vegetables", "garlic", false},
			{"oils", "olive oil", false},
			{"grains", "pasta", false},
			{"herbs", "basil", true},
		},
	},
	{
		fullName: "Jane Smith",
		username: "janesmith",
		diet:     "vegan",
		maxPrep:  60,
		pantry: []pantryEntry{
			{"legumes", "lentils", false},
			{"vegetables", "onion", false},
			{"vegetables", "carrot", false},
			{"spices", "cumin", false},
			{"vegetables", "celery", true},
		},
	},
	{
		fullName: "Bob Wilson",
		username: "bobwilson",
		diet:     "vegetarian",
		maxPrep:  20,
		pantry: []pantryEntry{
			{"dairy", "egg", false},
			{"dairy", "butter", false},
			{"spices", "salt", false},
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	pantry := service.NewPantryService(db)
	settings := service.NewSettingsService(db)

	for _, u := range testUsers {
		log := logging.Info().Str("username", u.username)
		user, err := auth.Register(ctx, service.RegisterInput{
			Username: u.username,
			Email:    u.username + "@example.com",
			FullName: u.fullName,
			Password: testPassword,
		})
		if errors.Is(err, service.ErrDuplicate) {
			log.Msg("user already exists, skipping")
			continue
		}
		if err != nil {
			logging.Fatal().Err(err).Str("username", u.username).Msg("failed to create user")
		}

		for _, item := range u.pantry {
			if _, err := pantry.Add(ctx, user.ID, service.PantryInput{
				Category:  item.category,
				Name:      item.name,
				Temporary: item.temporary,
			}); err != nil {
				logging.Fatal().Err(err).Str("item", item.name).Msg("failed to add pantry item")
			}
		}

		diet, maxPrep := u.diet, u.maxPrep
		if _, err := settings.Put(ctx, user.ID, service.SettingsInput{
			Preferences:    []string{diet},
			Recommendation: recommend.Preferences{DietaryPreference: &diet, MaxPrepTime: &maxPrep},
		}); err != nil {
			logging.Fatal().Err(err).Str("username", u.username).Msg("failed to save settings")
		}
		log.Int("pantry_items", len(u.pantry)).Msg("created test user")
	}

	var total int64
	db.Model(&models.User{}).Count(&total)
	logging.Info().Int64("total_users", total).Str("password", testPassword).Msg("test users ready")
}
