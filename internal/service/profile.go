package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/models"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// ProfileService projects a user's pantry and settings into the pipeline's Profile.
type ProfileService struct {
	db *gorm.DB
}

var _ recommend.ProfileStore = (*ProfileService)(nil)

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Get never reports an unknown user as an error; it returns an empty profile instead.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (recommend.Profile, error) {
	profile := recommend.Profile{Pantry: recommend.NewPantry()}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Settings").
		Preload("PantryItems").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, nil
	}
	if err != nil {
		return recommend.Profile{}, err
	}

	for _, item := range user.PantryItems {
		profile.Pantry[item.Name] = struct{}{}
	}
	if user.Settings != nil {
		profile.Preferences = recommend.Preferences(user.Settings.Recommendation)
	}
	return profile, nil
}

// PantryNames lists the user's pantry item names, separating staples from today's extras.
func (s *ProfileService) PantryNames(ctx context.Context, userID uuid.UUID) (staples, extras []string, err error) {
	var items []models.PantryItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&items).Error; err != nil {
		return nil, nil, err
	}
	staples, extras = []string{}, []string{}
	for _, item := range items {
		if item.Temporary {
			extras = append(extras, item.Name)
		} else {
			staples = append(staples, item.Name)
		}
	}
	return staples, extras, nil
}
