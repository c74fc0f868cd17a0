// File: internal/property/repository.go
package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"property_connect_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for property data operations.
type Repository interface {
	Create(ctx context.Context, p *Property) error
	FindByID(ctx context.Context, id string) (*Property, error)
	FindByIDs(ctx context.Context, ids []string) ([]Property, error)
	// ViewCounts returns the current views column for each id that still exists.
	ViewCounts(ctx context.Context, ids []string) (map[string]int, error)
	// Search returns one page of properties matching q plus the total match count.
	Search(ctx context.Context, q SearchQuery) ([]Property, *common.Pagination, error)
	FindByUserID(ctx context.Context, userID string, includeSold bool) ([]Property, error)
	// Update applies updates to the property only if userID owns it.
	Update(ctx context.Context, id, userID string, updates map[string]interface{}) (*Property, error)
	// Delete removes the property and its favorites and views when userID owns it or isAdmin is set.
	Delete(ctx context.Context, id, userID string, isAdmin bool) error
	FindInBatches(ctx context.Context, batchSize int, fn func(batch []Property) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM property repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Property) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Property, error) {
	var p Property
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Property not found.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []string) ([]Property, error) {
	if len(ids) == 0 {
		return []Property{}, nil
	}
	var props []Property
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&props).Error; err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	return props, nil
}

func (r *gormRepository) ViewCounts(ctx context.Context, ids []string) (map[string]int, error) {
	counts := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		ID    string
		Views int
	}
	if err := r.db.WithContext(ctx).Model(&Property{}).Select("id, views").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load view counts: %w", err)
	}
	for _, row := range rows {
		counts[row.ID] = row.Views
	}
	return counts, nil
}

// filterScope turns a SearchQuery into WHERE predicates. The count and the page query
// both apply this scope so the total always describes the same set as the page.
func filterScope(q SearchQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(q.Search); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			db = db.Where("(LOWER(properties.title) LIKE ? OR LOWER(properties.description) LIKE ? OR LOWER(properties.location) LIKE ?)", like, like, like)
		}
		if q.Type != "" {
			db = db.Where("properties.type = ?", q.Type)
		}
		if q.Category != "" {
			db = db.Where("properties.category = ?", q.Category)
		}
		if q.MinPrice != nil {
			db = db.Where("properties.price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("properties.price <= ?", *q.MaxPrice)
		}
		if q.Bedrooms != nil {
			db = db.Where("properties.bedrooms >= ?", *q.Bedrooms)
		}
		if q.Bathrooms != nil {
			db = db.Where("properties.bathrooms >= ?", *q.Bathrooms)
		}
		if q.MinSize != nil {
			db = db.Where("properties.size >= ?", *q.MinSize)
		}
		if q.MaxSize != nil {
			db = db.Where("properties.size <= ?", *q.MaxSize)
		}
		return db
	}
}

// orderBy maps a sort key to ORDER BY columns. Unknown keys sort newest first.
// The id tiebreak keeps paging stable when the primary key has duplicates.
func orderBy(sortBy string) clause.OrderBy {
	primary := clause.OrderByColumn{Column: clause.Column{Table: "properties", Name: "created_at"}, Desc: true}
	switch sortBy {
	case SortPriceAsc:
		primary = clause.OrderByColumn{Column: clause.Column{Table: "properties", Name: "price"}}
	case SortPriceDesc:
		primary = clause.OrderByColumn{Column: clause.Column{Table: "properties", Name: "price"}, Desc: true}
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		primary,
		{Column: clause.Column{Table: "properties", Name: "id"}},
	}}
}

func (r *gormRepository) Search(ctx context.Context, q SearchQuery) ([]Property, *common.Pagination, error) {
	scope := filterScope(q)

	var total int64
	if err := r.db.WithContext(ctx).Model(&Property{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count properties: %w", err)
	}

	pagination := common.NewPagination(total, q.Page, q.Limit)
	props := make([]Property, 0, pagination.PageSize)
	err := r.db.WithContext(ctx).
		Model(&Property{}).
		Scopes(scope).
		Clauses(orderBy(q.SortBy)).
		Offset(pagination.Offset()).
		Limit(pagination.PageSize).
		Find(&props).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search properties: %w", err)
	}
	return props, pagination, nil
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID string, includeSold bool) ([]Property, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeSold {
		query = query.Where("is_sold = ?", false)
	}
	props := []Property{}
	if err := query.Order("created_at DESC").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties for user: %w", err)
	}
	return props, nil
}

func (r *gormRepository) Update(ctx context.Context, id, userID string, updates map[string]interface{}) (*Property, error) {
	db := r.db.WithContext(ctx)
	if len(updates) > 0 {
		result := db.Model(&Property{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, common.ErrNotFound.WithMessage(msgNotFoundOrUnauthorized)
		}
	}

	var p Property
	if err := db.Where("id = ? AND user_id = ?", id, userID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithMessage(msgNotFoundOrUnauthorized)
		}
		return nil, err
	}
	return &p, nil
}

// ownedOrAdmin matches a property by id when the caller owns it or is an admin.
// Missing and foreign properties are indistinguishable through it.
const ownedOrAdmin = "id = ? AND (user_id = ? OR ?)"

func (r *gormRepository) Delete(ctx context.Context, id, userID string, isAdmin bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target := tx.Model(&Property{}).Select("id").Where(ownedOrAdmin, id, userID, isAdmin)

		if err := tx.Exec("DELETE FROM favorites WHERE property_id IN (?)", target).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Exec("DELETE FROM property_views WHERE property_id IN (?)", target).Error; err != nil {
			return fmt.Errorf("failed to delete property views: %w", err)
		}

		result := tx.Where(ownedOrAdmin, id, userID, isAdmin).Delete(&Property{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithMessage(msgNotFoundOrUnauthorized)
		}
		return nil
	})
}

func (r *gormRepository) FindInBatches(ctx context.Context, batchSize int, fn func(batch []Property) error) error {
	var batch []Property
	result := r.db.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return result.Error
}
