// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"property_connect_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Upsert(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDOrEmail(ctx context.Context, id, email string) (*User, error)
	UpdateNames(ctx context.Context, id string, firstName, lastName *string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Upsert inserts the user or, when the id already exists, refreshes the columns that were provided.
func (r *gormRepository) Upsert(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	columns := []string{"email", "updated_at"}
	if user.FirstName != nil {
		columns = append(columns, "first_name")
	}
	if user.LastName != nil {
		columns = append(columns, "last_name")
	}
	if user.ProfileImageURL != nil {
		columns = append(columns, "profile_image_url")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByIDOrEmail matches either the provider id or, when given, the email address.
func (r *gormRepository) FindByIDOrEmail(ctx context.Context, id, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if email != "" {
		query = query.Or("email = ?", email)
	}

	var userModel User
	if err := query.First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &userModel, nil
}

// UpdateNames sets the first and last name of an existing user. Nil values are left unchanged.
func (r *gormRepository) UpdateNames(ctx context.Context, id string, firstName, lastName *string) error {
	updates := map[string]interface{}{}
	if firstName != nil {
		updates["first_name"] = *firstName
	}
	if lastName != nil {
		updates["last_name"] = *lastName
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user names: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found with this ID.")
	}
	return nil
}
