package property

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/platform/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db := dbtest.Open(t, &Property{})
	// favorites and property_views are owned by other packages; only their shape matters here.
	require.NoError(t, db.Exec(`CREATE TABLE favorites (id varchar(36) PRIMARY KEY, user_id varchar(255), property_id varchar(36), created_at datetime)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE property_views (id varchar(36) PRIMARY KEY, property_id varchar(36), viewer_ip varchar(64), user_id varchar(255), viewed_at datetime)`).Error)
	return db
}

func sampleProperty(userID string, price float64) *Property {
	lat, lon := 18.0735, -15.9582
	req := CreatePropertyRequest{
		Title:        "Villa",
		Description:  "Sea view",
		Price:        price,
		Location:     "Tevragh Zeina",
		Latitude:     &lat,
		Longitude:    &lon,
		Type:         TypeSale,
		Category:     CategoryHouse,
		Images:       []string{"https://cdn/x.jpg"},
		ContactName:  "Sidi",
		ContactPhone: "+22212345678",
	}
	return req.ToProperty(userID)
}

func TestRepository_CreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))

	p := sampleProperty("u1", 120000)
	require.NoError(t, repo.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Views)
	assert.False(t, got.IsSold)
	assert.Equal(t, CurrencyMRU, got.Currency)
	assert.Equal(t, StringList{"https://cdn/x.jpg"}, got.Images)
	assert.Equal(t, "u1", got.UserID)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	_, err := NewGORMRepository(newTestDB(t)).FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRepository_SearchPriceRange(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))
	for _, price := range []float64{40000, 60000, 90000, 200000} {
		require.NoError(t, repo.Create(ctx, sampleProperty("u1", price)))
	}

	minPrice, maxPrice := 50000.0, 150000.0
	props, pagination, err := repo.Search(ctx, SearchQuery{
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		SortBy:   SortPriceAsc,
		Page:     1,
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, 60000.0, props[0].Price)
	assert.Equal(t, 90000.0, props[1].Price)
	assert.Equal(t, int64(2), pagination.TotalItems)
	assert.Equal(t, 1, pagination.TotalPages)
}

func TestRepository_SearchTextTypeAndRooms(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))

	a := sampleProperty("u1", 1000)
	a.Title = "Modern Apartment downtown"
	a.Type = TypeRent
	beds := 3
	a.Bedrooms = &beds
	b := sampleProperty("u1", 2000)
	b.Description = "Quiet apartment near the beach"
	c := sampleProperty("u1", 3000)
	for _, p := range []*Property{a, b, c} {
		require.NoError(t, repo.Create(ctx, p))
	}

	props, pagination, err := repo.Search(ctx, SearchQuery{Search: "APARTMENT", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pagination.TotalItems)
	assert.Len(t, props, 2)

	props, _, err = repo.Search(ctx, SearchQuery{Type: string(TypeRent), Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, a.ID, props[0].ID)

	two := 2
	props, _, err = repo.Search(ctx, SearchQuery{Bedrooms: &two, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, props, 1, "rows without bedrooms never match a bedrooms filter")
	assert.Equal(t, a.ID, props[0].ID)
}

func TestRepository_SearchPagesCoverEveryMatchOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))
	want := map[string]bool{}
	for i := 0; i < 7; i++ {
		p := sampleProperty("u1", 1000)
		p.Title = fmt.Sprintf("Listing %d", i)
		require.NoError(t, repo.Create(ctx, p))
		want[p.ID] = true
	}

	seen := map[string]bool{}
	for page := 1; page <= 4; page++ {
		props, pagination, err := repo.Search(ctx, SearchQuery{SortBy: SortPriceDesc, Page: page, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 4, pagination.TotalPages)
		for _, p := range props {
			assert.False(t, seen[p.ID], "property %s returned twice", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Equal(t, want, seen)
}

func TestRepository_FindByUserID(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))

	active := sampleProperty("u1", 1000)
	sold := sampleProperty("u1", 2000)
	sold.IsSold = true
	other := sampleProperty("u2", 3000)
	for _, p := range []*Property{active, sold, other} {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.FindByUserID(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, err := repo.FindByUserID(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, active.ID, public[0].ID)

	none, err := repo.FindByUserID(ctx, "nobody", false)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRepository_UpdateOwnerOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))
	p := sampleProperty("u1", 1000)
	require.NoError(t, repo.Create(ctx, p))

	_, err := repo.Update(ctx, p.ID, "u2", map[string]interface{}{"title": "Hijacked"})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Property not found or unauthorized", apiErr.Message)

	updated, err := repo.Update(ctx, p.ID, "u1", map[string]interface{}{"title": "Renamed", "is_sold": true})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.IsSold)
	assert.Equal(t, p.Description, updated.Description)

	_, err = repo.Update(ctx, "missing", "u1", map[string]interface{}{"title": "x"})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRepository_DeleteOwnerAdminAndStranger(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGORMRepository(db)

	p := sampleProperty("owner", 1000)
	require.NoError(t, repo.Create(ctx, p))
	keep := sampleProperty("owner", 2000)
	require.NoError(t, repo.Create(ctx, keep))

	require.NoError(t, db.Exec(`INSERT INTO favorites (id, user_id, property_id) VALUES ('f1', 'fan', ?), ('f2', 'fan', ?)`, p.ID, keep.ID).Error)
	require.NoError(t, db.Exec(`INSERT INTO property_views (id, property_id, viewer_ip) VALUES ('v1', ?, '1.1.1.1')`, p.ID).Error)

	err := repo.Delete(ctx, p.ID, "stranger", false)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)

	var favCount int64
	db.Table("favorites").Where("property_id = ?", p.ID).Count(&favCount)
	assert.Equal(t, int64(1), favCount, "a rejected delete leaves related rows alone")

	err = repo.Delete(ctx, "missing", "stranger", false)
	missingErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apiErr.Message, missingErr.Message, "missing and foreign properties look the same")

	require.NoError(t, repo.Delete(ctx, p.ID, "admin-user", true))
	_, err = repo.FindByID(ctx, p.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	var viewCount int64
	db.Table("favorites").Where("property_id = ?", p.ID).Count(&favCount)
	db.Table("property_views").Where("property_id = ?", p.ID).Count(&viewCount)
	assert.Zero(t, favCount)
	assert.Zero(t, viewCount)

	db.Table("favorites").Where("property_id = ?", keep.ID).Count(&favCount)
	assert.Equal(t, int64(1), favCount)

	require.NoError(t, repo.Delete(ctx, keep.ID, "owner", false))
}

func TestRepository_FindInBatches(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, sampleProperty("u1", float64(1000+i))))
	}

	var sizes []int
	err := repo.FindInBatches(ctx, 2, func(batch []Property) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func intPtr(v int) *int { return &v }

func TestRepository_SearchFilterPredicates(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))

	seed := []struct {
		category  Category
		bathrooms *int
		size      *int
	}{
		{CategoryHouse, intPtr(1), intPtr(80)},
		{CategoryApartment, intPtr(2), intPtr(120)},
		{CategoryApartment, intPtr(3), intPtr(200)},
		{CategoryLand, nil, intPtr(1000)},
		{CategoryCommercial, intPtr(4), nil},
	}
	for _, s := range seed {
		p := sampleProperty("u1", 50000)
		p.Category = s.category
		p.Bathrooms = s.bathrooms
		p.Size = s.size
		require.NoError(t, repo.Create(ctx, p))
	}

	cases := []struct {
		name  string
		query SearchQuery
		total int64
		match func(Property) bool
	}{
		{
			name:  "category",
			query: SearchQuery{Category: string(CategoryApartment)},
			total: 2,
			match: func(p Property) bool { return p.Category == CategoryApartment },
		},
		{
			name:  "bathrooms minimum",
			query: SearchQuery{Bathrooms: intPtr(2)},
			total: 3,
			match: func(p Property) bool { return p.Bathrooms != nil && *p.Bathrooms >= 2 },
		},
		{
			name:  "min size",
			query: SearchQuery{MinSize: intPtr(120)},
			total: 3,
			match: func(p Property) bool { return p.Size != nil && *p.Size >= 120 },
		},
		{
			name:  "max size",
			query: SearchQuery{MaxSize: intPtr(200)},
			total: 3,
			match: func(p Property) bool { return p.Size != nil && *p.Size <= 200 },
		},
		{
			name:  "size range and category",
			query: SearchQuery{MinSize: intPtr(100), MaxSize: intPtr(500), Category: string(CategoryApartment)},
			total: 2,
			match: func(p Property) bool {
				return p.Category == CategoryApartment && p.Size != nil && *p.Size >= 100 && *p.Size <= 500
			},
		},
		{
			name:  "no match",
			query: SearchQuery{Category: string(CategoryLand), Bathrooms: intPtr(1)},
			total: 0,
			match: func(Property) bool { return false },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.query
			q.Page, q.Limit = 1, 100
			props, pagination, err := repo.Search(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tc.total, pagination.TotalItems)
			assert.Len(t, props, int(tc.total))
			for _, p := range props {
				assert.True(t, tc.match(p), "property %s does not satisfy the %s filter", p.ID, tc.name)
			}
		})
	}
}

func TestRepository_SearchDefaultSortIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(newTestDB(t))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, offset := range []time.Duration{-2 * time.Hour, 0, -1 * time.Hour} {
		p := sampleProperty("u1", float64(1000*(i+1)))
		p.CreatedAt = base.Add(offset)
		p.UpdatedAt = p.CreatedAt
		require.NoError(t, repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}
	newest, middle, oldest := ids[1], ids[2], ids[0]

	for _, sortBy := range []string{"", SortDate, "unknown"} {
		props, _, err := repo.Search(ctx, SearchQuery{SortBy: sortBy, Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, props, 3)
		assert.Equal(t, []string{newest, middle, oldest}, []string{props[0].ID, props[1].ID, props[2].ID}, "sortBy=%q", sortBy)
	}
}

func TestRepository_ViewCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGORMRepository(db)

	a := sampleProperty("u1", 100)
	b := sampleProperty("u1", 200)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, db.Model(&Property{}).Where("id = ?", a.ID).Update("views", 7).Error)

	counts, err := repo.ViewCounts(ctx, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 7, b.ID: 0}, counts)

	counts, err = repo.ViewCounts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
