// File: internal/profile/model.go
package profile

import "time"

// Language is the UI language a user prefers.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
	LanguageFrench  Language = "fr"
)

// Profile extends a user account with contact details and the admin flag.
type Profile struct {
	UserID            string    `gorm:"column:user_id;type:varchar(255);primaryKey" json:"userId"`
	DisplayName       *string   `gorm:"type:varchar(255)" json:"displayName"`
	Phone             *string   `gorm:"type:varchar(50)" json:"phone"`
	Whatsapp          *string   `gorm:"type:varchar(50)" json:"whatsapp"`
	PreferredLanguage Language  `gorm:"type:varchar(2);not null;default:'en'" json:"preferredLanguage"`
	IsAdmin           bool      `gorm:"not null;default:false;index" json:"isAdmin"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

// AdminBootstrap is a single-row table. Whoever inserts the row first becomes the initial admin.
type AdminBootstrap struct {
	ID        string    `gorm:"type:varchar(16);primaryKey"`
	UserID    string    `gorm:"type:varchar(255);not null"`
	ClaimedAt time.Time `gorm:"not null"`
}

func (AdminBootstrap) TableName() string {
	return "admin_bootstraps"
}

const bootstrapRowID = "default"

// Fields are the user-editable profile columns. Nil means "leave as is".
type Fields struct {
	DisplayName       *string
	Phone             *string
	Whatsapp          *string
	PreferredLanguage *Language
}

// UpdateProfileRequest is the body of PUT /api/profile.
type UpdateProfileRequest struct {
	DisplayName       *string   `json:"displayName" binding:"omitempty,max=255"`
	FirstName         *string   `json:"firstName" binding:"omitempty,max=255"`
	LastName          *string   `json:"lastName" binding:"omitempty,max=255"`
	Phone             *string   `json:"phone" binding:"omitempty,max=50"`
	Whatsapp          *string   `json:"whatsapp" binding:"omitempty,max=50"`
	PreferredLanguage *Language `json:"preferredLanguage" binding:"omitempty,oneof=en ar fr"`
}

// Fields returns the profile part of the request.
func (r UpdateProfileRequest) Fields() Fields {
	return Fields{
		DisplayName:       r.DisplayName,
		Phone:             r.Phone,
		Whatsapp:          r.Whatsapp,
		PreferredLanguage: r.PreferredLanguage,
	}
}

// AdminCheckResponse is the body of GET /api/admin/check.
type AdminCheckResponse struct {
	IsAdmin bool `json:"isAdmin"`
}
