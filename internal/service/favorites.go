package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/models"
)

type FavoriteInput struct {
	Title          string
	Image          string
	ReadyInMinutes int
	Servings       int
	Ingredients    []string
	Instructions   string
}

type FavoriteService struct {
	db *gorm.DB
}

var _ IFavoriteService = (*FavoriteService)(nil)

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

func (s *FavoriteService) Add(ctx context.Context, userID uuid.UUID, in FavoriteInput) (*models.FavoriteRecipe, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	fav := models.FavoriteRecipe{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Image:          in.Image,
		ReadyInMinutes: in.ReadyInMinutes,
		Servings:       in.Servings,
		Ingredients:    nonNil(in.Ingredients),
		Instructions:   in.Instructions,
	}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		return nil, err
	}
	return &fav, nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRecipe, error) {
	favs := []models.FavoriteRecipe{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&favs).Error
	return favs, err
}

// Delete removes a favorite owned by userID; other users' favorites are reported as not found.
func (s *FavoriteService) Delete(ctx context.Context, userID, favoriteID uuid.UUID) error {
	return deleteOne(s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, favoriteID), &models.FavoriteRecipe{})
}
