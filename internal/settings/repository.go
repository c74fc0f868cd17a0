package settings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for app settings persistence.
type Repository interface {
	// Get returns the settings row, seeding the defaults if it does not exist yet.
	Get(ctx context.Context) (*AppSettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (*AppSettings, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM settings repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(ctx context.Context) (*AppSettings, error) {
	return r.getOrSeed(r.db.WithContext(ctx))
}

func (r *gormRepository) getOrSeed(db *gorm.DB) (*AppSettings, error) {
	var s AppSettings
	err := db.Where("id = ?", SingletonID).Take(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load app settings: %w", err)
	}

	// Two first readers may race here; the loser's insert is ignored and it re-reads the winner's row.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(Defaults()).Error; err != nil {
		return nil, fmt.Errorf("failed to seed app settings: %w", err)
	}
	if err := db.Where("id = ?", SingletonID).Take(&s).Error; err != nil {
		return nil, fmt.Errorf("failed to load app settings: %w", err)
	}
	return &s, nil
}

func (r *gormRepository) Update(ctx context.Context, req UpdateSettingsRequest) (*AppSettings, error) {
	var out *AppSettings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.getOrSeed(tx)
		if err != nil {
			return err
		}
		if updates := req.updates(); len(updates) > 0 {
			if err := tx.Model(current).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update app settings: %w", err)
			}
		}
		out, err = r.getOrSeed(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
