// File: internal/profile/repository.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property_connect_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*Profile, error)
	// Upsert updates the provided fields of an existing profile, or creates the profile.
	// A created profile is granted admin only if it claims the bootstrap row.
	Upsert(ctx context.Context, userID string, fields Fields) (*Profile, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// errProfileCreatedConcurrently signals that another request inserted the same profile first.
var errProfileCreatedConcurrently = errors.New("profile created concurrently")

func (r *gormRepository) FindByUserID(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) Upsert(ctx context.Context, userID string, fields Fields) (*Profile, error) {
	var out *Profile
	run := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			p, err := upsertTx(tx, userID, fields)
			out = p
			return err
		})
	}

	err := run()
	if errors.Is(err, errProfileCreatedConcurrently) {
		// The row exists now, so the retry takes the update path.
		err = run()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return out, nil
}

func upsertTx(tx *gorm.DB, userID string, fields Fields) (*Profile, error) {
	var existing Profile
	err := tx.Where("user_id = ?", userID).Take(&existing).Error
	if err == nil {
		if updates := fields.updates(); len(updates) > 0 {
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		if err := tx.Where("user_id = ?", userID).Take(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	claim := tx.Exec(
		`INSERT INTO admin_bootstraps (id, user_id, claimed_at)
		 SELECT ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM user_profiles WHERE is_admin = ?)
		 ON CONFLICT (id) DO NOTHING`,
		bootstrapRowID, userID, time.Now().UTC(), true,
	)
	if claim.Error != nil {
		return nil, fmt.Errorf("failed to claim admin bootstrap: %w", claim.Error)
	}

	p := &Profile{
		UserID:            userID,
		DisplayName:       fields.DisplayName,
		Phone:             fields.Phone,
		Whatsapp:          fields.Whatsapp,
		PreferredLanguage: LanguageEnglish,
		IsAdmin:           claim.RowsAffected == 1,
	}
	if fields.PreferredLanguage != nil {
		p.PreferredLanguage = *fields.PreferredLanguage
	}

	created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if created.Error != nil {
		return nil, created.Error
	}
	if created.RowsAffected == 0 {
		return nil, errProfileCreatedConcurrently
	}
	return p, nil
}

func (f Fields) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if f.DisplayName != nil {
		updates["display_name"] = *f.DisplayName
	}
	if f.Phone != nil {
		updates["phone"] = *f.Phone
	}
	if f.Whatsapp != nil {
		updates["whatsapp"] = *f.Whatsapp
	}
	if f.PreferredLanguage != nil {
		updates["preferred_language"] = *f.PreferredLanguage
	}
	return updates
}

func (r *gormRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var flags []bool
	err := r.db.WithContext(ctx).Model(&Profile{}).
		Where("user_id = ?", userID).
		Limit(1).
		Pluck("is_admin", &flags).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin flag: %w", err)
	}
	return len(flags) == 1 && flags[0], nil
}
