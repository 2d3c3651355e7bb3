package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName     string         `gorm:"size:255" json:"full_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	IsVerified   bool           `gorm:"not null;default:false" json:"is_verified"`

	Settings    *UserSettings    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PantryItems []PantryItem     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Favorites   []FavoriteRecipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns an id to users created without one.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserSettings holds the free-form lists shown on the settings page and the typed
// preferences the recommendation pipeline reads.
type UserSettings struct {
	ID             uint             `gorm:"primarykey" json:"-"`
	UserID         uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex" json:"-"`
	Allergies      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	Dislikes       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dislikes"`
	Preferences    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"preferences"`
	Favorites      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"favorites"`
	Recommendation JSONPreferences  `gorm:"type:jsonb;not null;default:'{}'" json:"recommendation"`
	UpdatedAt      time.Time        `json:"-"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// PantryItem is one ingredient a user keeps at home. Temporary items are the "extras today".
type PantryItem struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Category  string    `gorm:"size:50;not null" json:"category"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Temporary bool      `gorm:"not null;default:false" json:"temporary"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *PantryItem) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
