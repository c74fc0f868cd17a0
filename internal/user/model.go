// File: internal/user/model.go
package user

import (
	"strings"
	"time"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"

	// DevUserID is the account used when no OAuth provider is configured.
	DevUserID = "local-dev-user"
)

// User is an account created from an OAuth identity. The ID is "<provider>_<provider id>".
type User struct {
	ID              string    `gorm:"type:varchar(255);primaryKey" json:"id"`
	Email           string    `gorm:"type:varchar(255);index" json:"email"`
	FirstName       *string   `gorm:"type:varchar(255)" json:"firstName"`
	LastName        *string   `gorm:"type:varchar(255)" json:"lastName"`
	ProfileImageURL *string   `gorm:"column:profile_image_url;type:text" json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// OAuthProfile is the identity returned by a provider after a successful login.
type OAuthProfile struct {
	Provider        string
	ProviderID      string
	Email           string
	DisplayName     string
	ProfileImageURL string
}

// UserID returns the account id derived from the provider identity.
func (p OAuthProfile) UserID() string {
	return p.Provider + "_" + p.ProviderID
}

// SplitDisplayName splits "Jane Q Doe" into "Jane" and "Q Doe".
func SplitDisplayName(displayName string) (first, last string) {
	parts := strings.Fields(displayName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// DevUser returns the fixed local development account.
func DevUser() *User {
	first, last := "Local", "Developer"
	return &User{ID: DevUserID, Email: "dev@localhost", FirstName: &first, LastName: &last}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
