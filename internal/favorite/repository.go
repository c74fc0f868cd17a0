package favorite

import (
	"context"
	"fmt"

	"property_connect_backend/internal/property"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for favorite data operations.
type Repository interface {
	// Add inserts the pair. created is false when it already existed.
	Add(ctx context.Context, userID, propertyID string) (fav *Favorite, created bool, err error)
	// Remove deletes the pair and reports whether a row was removed.
	Remove(ctx context.Context, userID, propertyID string) (bool, error)
	ListProperties(ctx context.Context, userID string) ([]property.Property, error)
	ListPropertyIDs(ctx context.Context, userID string) ([]string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM favorite repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Add(ctx context.Context, userID, propertyID string) (*Favorite, bool, error) {
	fav := &Favorite{ID: uuid.NewString(), UserID: userID, PropertyID: propertyID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
			DoNothing: true,
		}).
		Create(fav)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to add favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	return fav, true, nil
}

func (r *gormRepository) Remove(ctx context.Context, userID, propertyID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&Favorite{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) ListProperties(ctx context.Context, userID string) ([]property.Property, error) {
	props := []property.Property{}
	err := r.db.WithContext(ctx).
		Model(&property.Property{}).
		Joins("JOIN favorites ON favorites.property_id = properties.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite properties: %w", err)
	}
	return props, nil
}

func (r *gormRepository) ListPropertyIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("property_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	return ids, nil
}
