package settings

import "time"

// SingletonID is the primary key of the only app_settings row.
const SingletonID = "default"

// AppSettings holds the site logo and support contact channels.
type AppSettings struct {
	ID              string    `gorm:"type:varchar(16);primaryKey" json:"id"`
	LogoURL         *string   `gorm:"column:logo_url;type:text" json:"logoUrl"`
	SupportPhone    *string   `gorm:"type:varchar(50)" json:"supportPhone"`
	SupportWhatsapp *string   `gorm:"type:varchar(50)" json:"supportWhatsapp"`
	SupportEmail    *string   `gorm:"type:varchar(255)" json:"supportEmail"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (AppSettings) TableName() string {
	return "app_settings"
}

// Defaults returns the row seeded on first read.
func Defaults() *AppSettings {
	phone := "+1 (555) 123-4567"
	whatsapp := "+15551234567"
	email := "support@propfind.com"
	return &AppSettings{
		ID:              SingletonID,
		SupportPhone:    &phone,
		SupportWhatsapp: &whatsapp,
		SupportEmail:    &email,
	}
}

// UpdateSettingsRequest is the body of PATCH /api/app-settings. Absent fields are left unchanged.
type UpdateSettingsRequest struct {
	LogoURL         *string `json:"logoUrl" binding:"omitempty,max=2048"`
	SupportPhone    *string `json:"supportPhone" binding:"omitempty,max=50"`
	SupportWhatsapp *string `json:"supportWhatsapp" binding:"omitempty,max=50"`
	SupportEmail    *string `json:"supportEmail" binding:"omitempty,max=255"`
}

func (r UpdateSettingsRequest) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.LogoURL != nil {
		updates["logo_url"] = *r.LogoURL
	}
	if r.SupportPhone != nil {
		updates["support_phone"] = *r.SupportPhone
	}
	if r.SupportWhatsapp != nil {
		updates["support_whatsapp"] = *r.SupportWhatsapp
	}
	if r.SupportEmail != nil {
		updates["support_email"] = *r.SupportEmail
	}
	return updates
}
