package propertyview

import "time"

// PropertyView is one counted visit to a property detail page. Rows are append-only and
// go away only with their property.
type PropertyView struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index:idx_property_views_lookup,priority:1" json:"propertyId"`
	ViewerIP   *string   `gorm:"type:varchar(64);index" json:"viewerIp,omitempty"`
	UserID     *string   `gorm:"type:varchar(255);index" json:"userId,omitempty"`
	ViewedAt   time.Time `gorm:"not null;index:idx_property_views_lookup,priority:2" json:"viewedAt"`
}

func (PropertyView) TableName() string {
	return "property_views"
}
