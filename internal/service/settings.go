package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/chefai/backend/internal/models"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// SettingsInput replaces a user's settings wholesale.
type SettingsInput struct {
	Allergies      []string
	Dislikes       []string
	Preferences    []string
	Favorites      []string
	Recommendation recommend.Preferences
}

type SettingsService struct {
	db *gorm.DB
}

var _ ISettingsService = (*SettingsService)(nil)

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the stored settings, or empty settings when the user has never saved any.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptySettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Put creates or overwrites the user's settings.
func (s *SettingsService) Put(ctx context.Context, userID uuid.UUID, in SettingsInput) (*models.UserSettings, error) {
	settings := emptySettings(userID)
	settings.Allergies = nonNil(in.Allergies)
	settings.Dislikes = nonNil(in.Dislikes)
	settings.Preferences = nonNil(in.Preferences)
	settings.Favorites = nonNil(in.Favorites)
	settings.Recommendation = models.JSONPreferences(in.Recommendation)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"allergies", "dislikes", "preferences", "favorites", "recommendation", "updated_at"}),
	}).Create(settings).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func emptySettings(userID uuid.UUID) *models.UserSettings {
	return &models.UserSettings{
		UserID:      userID,
		Allergies:   models.JSONBStringArray{},
		Dislikes:    models.JSONBStringArray{},
		Preferences: models.JSONBStringArray{},
		Favorites:   models.JSONBStringArray{},
	}
}

func nonNil(items []string) models.JSONBStringArray {
	if items == nil {
		return models.JSONBStringArray{}
	}
	return models.JSONBStringArray(items)
}
