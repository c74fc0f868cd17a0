package favorite

import "time"

// Favorite links a user to a property they saved. A pair exists at most once.
type Favorite struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_favorites_user_property,priority:1" json:"userId"`
	PropertyID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_property,priority:2;index" json:"propertyId"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// AddFavoriteRequest is the body of POST /api/favorites.
type AddFavoriteRequest struct {
	PropertyID string `json:"propertyId"`
}

// ExistingFavoriteResponse is returned when the pair was already saved.
type ExistingFavoriteResponse struct {
	UserID     string `json:"userId"`
	PropertyID string `json:"propertyId"`
	Success    bool   `json:"success"`
}
