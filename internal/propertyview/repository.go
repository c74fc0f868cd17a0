package propertyview

import (
	"context"
	"fmt"
	"time"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/property"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for view event storage.
type Repository interface {
	// HasViewedSince reports whether a view of propertyID by the identity exists at or after since.
	// The user id is matched when set, otherwise the IP.
	HasViewedSince(ctx context.Context, propertyID string, viewer property.Viewer, since time.Time) (bool, error)
	// RecordAndIncrement inserts the view event and bumps the property's counter in one transaction.
	RecordAndIncrement(ctx context.Context, view *PropertyView) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM view repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) HasViewedSince(ctx context.Context, propertyID string, viewer property.Viewer, since time.Time) (bool, error) {
	query := r.db.WithContext(ctx).Model(&PropertyView{}).
		Where("property_id = ? AND viewed_at >= ?", propertyID, since)
	switch {
	case viewer.UserID != "":
		query = query.Where("user_id = ?", viewer.UserID)
	case viewer.IP != "":
		query = query.Where("viewer_ip = ?", viewer.IP)
	default:
		return false, nil
	}

	var ids []string
	if err := query.Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("failed to check recent views: %w", err)
	}
	return len(ids) > 0, nil
}

func (r *gormRepository) RecordAndIncrement(ctx context.Context, view *PropertyView) error {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return fmt.Errorf("failed to record property view: %w", err)
		}
		result := tx.Model(&property.Property{}).
			Where("id = ?", view.PropertyID).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to increment property views: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Property not found.")
		}
		return nil
	})
}
