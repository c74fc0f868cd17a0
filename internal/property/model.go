// File: internal/property/model.go
package property

import (
	"database/sql/driver"
	"strconv"

	"property_connect_backend/internal/common"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type ListingType string

const (
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

type Category string

const (
	CategoryHouse      Category = "house"
	CategoryApartment  Category = "apartment"
	CategoryLand       Category = "land"
	CategoryCommercial Category = "commercial"
)

type Currency string

const (
	CurrencyMRU Currency = "MRU"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

const msgNotFoundOrUnauthorized = "Property not found or unauthorized"

// StringList is stored as text[] on PostgreSQL and as an array literal in a text column elsewhere.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *StringList) Scan(src interface{}) error {
	return (*pq.StringArray)(l).Scan(src)
}

func (StringList) GormDataType() string {
	return "text[]"
}

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Property is a single real-estate listing.
type Property struct {
	common.BaseModel
	UserID          string      `gorm:"type:varchar(255);not null;index" json:"userId"`
	Title           string      `gorm:"type:varchar(255);not null" json:"title"`
	Description     string      `gorm:"type:text;not null" json:"description"`
	Price           float64     `gorm:"not null;index" json:"price"`
	Currency        Currency    `gorm:"type:varchar(3);not null;default:'MRU'" json:"currency"`
	Location        string      `gorm:"type:varchar(500);not null" json:"location"`
	Latitude        float64     `gorm:"not null" json:"latitude"`
	Longitude       float64     `gorm:"not null" json:"longitude"`
	Type            ListingType `gorm:"type:varchar(10);not null;index" json:"type"`
	Category        Category    `gorm:"type:varchar(20);not null;index" json:"category"`
	Images          StringList  `gorm:"not null" json:"images"`
	VideoURL        *string     `gorm:"type:text" json:"videoUrl"`
	TiktokURL       *string     `gorm:"type:text" json:"tiktokUrl"`
	FacebookURL     *string     `gorm:"type:text" json:"facebookUrl"`
	ContactName     string      `gorm:"type:varchar(255);not null" json:"contactName"`
	ContactPhone    string      `gorm:"type:varchar(50);not null" json:"contactPhone"`
	ContactWhatsapp *string     `gorm:"type:varchar(50)" json:"contactWhatsapp"`
	Bedrooms        *int        `json:"bedrooms"`
	Bathrooms       *int        `json:"bathrooms"`
	Size            *int        `json:"size"`
	IsSold          bool        `gorm:"not null;default:false" json:"isSold"`
	Views           int         `gorm:"not null;default:0" json:"views"`
}

func (Property) TableName() string {
	return "properties"
}

// --- DTOs for API ---

// CreatePropertyRequest is the body of POST /api/properties.
type CreatePropertyRequest struct {
	Title           string      `json:"title" binding:"required,max=255"`
	Description     string      `json:"description" binding:"required"`
	Price           float64     `json:"price" binding:"required,gt=0"`
	Currency        Currency    `json:"currency" binding:"omitempty,oneof=MRU USD EUR"`
	Location        string      `json:"location" binding:"required,max=500"`
	Latitude        *float64    `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude       *float64    `json:"longitude" binding:"required,gte=-180,lte=180"`
	Type            ListingType `json:"type" binding:"required,oneof=sale rent"`
	Category        Category    `json:"category" binding:"required,oneof=house apartment land commercial"`
	Images          []string    `json:"images" binding:"required,min=1,max=10,dive,required"`
	VideoURL        *string     `json:"videoUrl" binding:"omitempty,max=2048"`
	TiktokURL       *string     `json:"tiktokUrl" binding:"omitempty,max=2048"`
	FacebookURL     *string     `json:"facebookUrl" binding:"omitempty,max=2048"`
	ContactName     string      `json:"contactName" binding:"required,max=255"`
	ContactPhone    string      `json:"contactPhone" binding:"required,max=50"`
	ContactWhatsapp *string     `json:"contactWhatsapp" binding:"omitempty,max=50"`
	Bedrooms        *int        `json:"bedrooms" binding:"omitempty,gt=0"`
	Bathrooms       *int        `json:"bathrooms" binding:"omitempty,gt=0"`
	Size            *int        `json:"size" binding:"omitempty,gt=0"`
	IsSold          bool        `json:"isSold"`
}

// ToProperty builds the row owned by userID.
func (r CreatePropertyRequest) ToProperty(userID string) *Property {
	currency := r.Currency
	if currency == "" {
		currency = CurrencyMRU
	}
	return &Property{
		UserID:          userID,
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		Currency:        currency,
		Location:        r.Location,
		Latitude:        *r.Latitude,
		Longitude:       *r.Longitude,
		Type:            r.Type,
		Category:        r.Category,
		Images:          StringList(r.Images),
		VideoURL:        r.VideoURL,
		TiktokURL:       r.TiktokURL,
		FacebookURL:     r.FacebookURL,
		ContactName:     r.ContactName,
		ContactPhone:    r.ContactPhone,
		ContactWhatsapp: r.ContactWhatsapp,
		Bedrooms:        r.Bedrooms,
		Bathrooms:       r.Bathrooms,
		Size:            r.Size,
		IsSold:          r.IsSold,
	}
}

// UpdatePropertyRequest is the body of PATCH /api/properties/:id. Absent fields are left unchanged.
type UpdatePropertyRequest struct {
	Title           *string      `json:"title" binding:"omitempty,min=1,max=255"`
	Description     *string      `json:"description" binding:"omitempty,min=1"`
	Price           *float64     `json:"price" binding:"omitempty,gt=0"`
	Currency        *Currency    `json:"currency" binding:"omitempty,oneof=MRU USD EUR"`
	Location        *string      `json:"location" binding:"omitempty,min=1,max=500"`
	Latitude        *float64     `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude       *float64     `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Type            *ListingType `json:"type" binding:"omitempty,oneof=sale rent"`
	Category        *Category    `json:"category" binding:"omitempty,oneof=house apartment land commercial"`
	Images          []string     `json:"images" binding:"omitempty,min=1,max=10,dive,required"`
	VideoURL        *string      `json:"videoUrl" binding:"omitempty,max=2048"`
	TiktokURL       *string      `json:"tiktokUrl" binding:"omitempty,max=2048"`
	FacebookURL     *string      `json:"facebookUrl" binding:"omitempty,max=2048"`
	ContactName     *string      `json:"contactName" binding:"omitempty,min=1,max=255"`
	ContactPhone    *string      `json:"contactPhone" binding:"omitempty,min=1,max=50"`
	ContactWhatsapp *string      `json:"contactWhatsapp" binding:"omitempty,max=50"`
	Bedrooms        *int         `json:"bedrooms" binding:"omitempty,gt=0"`
	Bathrooms       *int         `json:"bathrooms" binding:"omitempty,gt=0"`
	Size            *int         `json:"size" binding:"omitempty,gt=0"`
	IsSold          *bool        `json:"isSold"`
}

// Updates returns the column changes carried by the request.
func (r UpdatePropertyRequest) Updates() map[string]interface{} {
	u := map[string]interface{}{}
	if r.Title != nil {
		u["title"] = *r.Title
	}
	if r.Description != nil {
		u["description"] = *r.Description
	}
	if r.Price != nil {
		u["price"] = *r.Price
	}
	if r.Currency != nil {
		u["currency"] = *r.Currency
	}
	if r.Location != nil {
		u["location"] = *r.Location
	}
	if r.Latitude != nil {
		u["latitude"] = *r.Latitude
	}
	if r.Longitude != nil {
		u["longitude"] = *r.Longitude
	}
	if r.Type != nil {
		u["type"] = *r.Type
	}
	if r.Category != nil {
		u["category"] = *r.Category
	}
	if r.Images != nil {
		u["images"] = StringList(r.Images)
	}
	if r.VideoURL != nil {
		u["video_url"] = *r.VideoURL
	}
	if r.TiktokURL != nil {
		u["tiktok_url"] = *r.TiktokURL
	}
	if r.FacebookURL != nil {
		u["facebook_url"] = *r.FacebookURL
	}
	if r.ContactName != nil {
		u["contact_name"] = *r.ContactName
	}
	if r.ContactPhone != nil {
		u["contact_phone"] = *r.ContactPhone
	}
	if r.ContactWhatsapp != nil {
		u["contact_whatsapp"] = *r.ContactWhatsapp
	}
	if r.Bedrooms != nil {
		u["bedrooms"] = *r.Bedrooms
	}
	if r.Bathrooms != nil {
		u["bathrooms"] = *r.Bathrooms
	}
	if r.Size != nil {
		u["size"] = *r.Size
	}
	if r.IsSold != nil {
		u["is_sold"] = *r.IsSold
	}
	return u
}

// SortBy values accepted by the search endpoint.
const (
	SortDate      = "date"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// SearchQuery is the filter half of GET /api/properties. Paging is read separately.
type SearchQuery struct {
	Search    string   `form:"search"`
	Type      string   `form:"type" binding:"omitempty,oneof=sale rent"`
	Category  string   `form:"category" binding:"omitempty,oneof=house apartment land commercial"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	Bedrooms  *int     `form:"bedrooms"`
	Bathrooms *int     `form:"bathrooms"`
	MinSize   *int     `form:"minSize"`
	MaxSize   *int     `form:"maxSize"`
	SortBy    string   `form:"sortBy"`
	Page      int      `form:"-"`
	Limit     int      `form:"-"`
}

// CacheParams flattens the query for cache key generation.
func (q SearchQuery) CacheParams() map[string]string {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortDate
	}
	p := map[string]string{
		"search":   q.Search,
		"type":     q.Type,
		"category": q.Category,
		"sortBy":   sortBy,
		"page":     strconv.Itoa(q.Page),
		"limit":    strconv.Itoa(q.Limit),
	}
	if q.MinPrice != nil {
		p["minPrice"] = strconv.FormatFloat(*q.MinPrice, 'f', -1, 64)
	}
	if q.MaxPrice != nil {
		p["maxPrice"] = strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64)
	}
	for name, v := range map[string]*int{"bedrooms": q.Bedrooms, "bathrooms": q.Bathrooms, "minSize": q.MinSize, "maxSize": q.MaxSize} {
		if v != nil {
			p[name] = strconv.Itoa(*v)
		}
	}
	return p
}

// SearchPage is one page of search results. It is also the cached form.
type SearchPage struct {
	Properties []Property         `json:"properties"`
	Pagination *common.Pagination `json:"pagination"`
}

// NearbyQuery is the query of GET /api/properties/nearby.
type NearbyQuery struct {
	Lat      *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Lon      *float64 `form:"lon" binding:"required,gte=-180,lte=180"`
	RadiusKm float64  `form:"radiusKm" binding:"omitempty,gt=0,lte=500"`
	Limit    int      `form:"limit" binding:"omitempty,gt=0,lte=100"`
}

// Viewer identifies who is looking at a property detail page.
type Viewer struct {
	UserID string
	IP     string
}
