package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/platform/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) Repository {
	return NewGORMRepository(dbtest.Open(t, &Profile{}, &AdminBootstrap{}))
}

func TestRepository_FirstProfileBecomesAdmin(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.Upsert(ctx, "google_1", Fields{})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)

	for i := 2; i <= 4; i++ {
		p, err := repo.Upsert(ctx, fmt.Sprintf("google_%d", i), Fields{})
		require.NoError(t, err)
		assert.False(t, p.IsAdmin, "profile %d must not be admin", i)
	}

	isAdmin, err := repo.IsAdmin(ctx, "google_1")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = repo.IsAdmin(ctx, "google_3")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestRepository_UpsertExistingUpdatesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	phone := "+222 1234"
	_, err := repo.Upsert(ctx, "u1", Fields{Phone: &phone})
	require.NoError(t, err)

	name := "Amina"
	lang := LanguageArabic
	p, err := repo.Upsert(ctx, "u1", Fields{DisplayName: &name, PreferredLanguage: &lang})
	require.NoError(t, err)

	require.NotNil(t, p.Phone)
	assert.Equal(t, phone, *p.Phone)
	assert.Equal(t, "Amina", *p.DisplayName)
	assert.Equal(t, LanguageArabic, p.PreferredLanguage)
	assert.True(t, p.IsAdmin, "updates never clear the admin flag")
}

func TestRepository_BootstrapIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t, &Profile{}, &AdminBootstrap{})
	repo := NewGORMRepository(db)

	// An admin that predates the bootstrap row still blocks the grant.
	require.NoError(t, db.Create(&Profile{UserID: "legacy", PreferredLanguage: LanguageEnglish, IsAdmin: true}).Error)

	p, err := repo.Upsert(ctx, "newcomer", Fields{})
	require.NoError(t, err)
	assert.False(t, p.IsAdmin)
}

func TestRepository_IsAdminWithoutProfile(t *testing.T) {
	isAdmin, err := newTestRepo(t).IsAdmin(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestRepository_FindByUserIDNotFound(t *testing.T) {
	_, err := newTestRepo(t).FindByUserID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
