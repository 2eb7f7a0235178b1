package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is the provider-side record that carries the authoritative role
// for a user, keyed by the identity provider's user id.
type Profile struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Role        Role           `gorm:"not null;default:'employee'" json:"role"`
	FullName    string         `json:"full_name"`
	Preferences datatypes.JSON `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileRepository reads role records from the profiles table.
type ProfileRepository interface {
	GetRole(ctx context.Context, userID string) (Role, error)
}

type gormProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

// GetRole returns the stored role for the user. A missing profile is not an
// error; callers default the role to employee.
func (r *gormProfileRepository) GetRole(ctx context.Context, userID string) (Role, error) {
	var profile Profile
	err := r.db.WithContext(ctx).Select("id", "role").First(&profile, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}
