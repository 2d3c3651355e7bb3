package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/chefai/backend/internal/models"
)

type PantryInput struct {
	Category  string
	Name      string
	Temporary bool
}

type PantryService struct {
	db *gorm.DB
}

var _ IPantryService = (*PantryService)(nil)

func NewPantryService(db *gorm.DB) *PantryService {
	return &PantryService{db: db}
}

// Add stores a pantry item. Names are unique per user, ignoring case.
func (s *PantryService) Add(ctx context.Context, userID uuid.UUID, in PantryInput) (*models.PantryItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return nil, fmt.Errorf("%w: category and name are required", ErrInvalidInput)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PantryItem{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(in.Name)).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: item '%s' is already in your pantry", ErrDuplicate, in.Name)
	}

	item := models.PantryItem{
		UserID:    userID,
		Category:  in.Category,
		Name:      in.Name,
		Temporary: in.Temporary,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *PantryService) List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error) {
	items := []models.PantryItem{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("category, name").
		Find(&items).Error
	return items, err
}

func (s *PantryService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	return deleteOne(s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID), &models.PantryItem{})
}

// DeleteByName removes the item whose name matches, ignoring case.
func (s *PantryService) DeleteByName(ctx context.Context, userID uuid.UUID, name string) error {
	return deleteOne(s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(strings.TrimSpace(name))),
		&models.PantryItem{})
}

// deleteOne deletes the rows matched by scope and reports ErrNotFound when there were none.
func deleteOne(scope *gorm.DB, model interface{}) error {
	res := scope.Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
