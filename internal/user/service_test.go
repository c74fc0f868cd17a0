package user

import (
	"context"
	"testing"

	"property_connect_backend/internal/platform/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSplitDisplayName(t *testing.T) {
	first, last := SplitDisplayName("  Jane  Quinn Doe ")
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Quinn Doe", last)

	first, last = SplitDisplayName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Equal(t, "", last)
}

func TestService_LoginWithOAuth_NewThenReturning(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewGORMRepository(dbtest.Open(t, &User{})), zap.NewNop())

	profile := OAuthProfile{Provider: ProviderGoogle, ProviderID: "123", Email: "j@example.com", DisplayName: "Jane Doe"}

	u, isNew, err := svc.LoginWithOAuth(ctx, profile)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "google_123", u.ID)
	assert.Equal(t, "Jane", *u.FirstName)
	assert.Equal(t, "Doe", *u.LastName)

	_, isNew, err = svc.LoginWithOAuth(ctx, profile)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestService_LoginWithOAuth_RejectsMissingIdentity(t *testing.T) {
	svc := NewService(NewGORMRepository(dbtest.Open(t, &User{})), zap.NewNop())
	_, _, err := svc.LoginWithOAuth(context.Background(), OAuthProfile{Provider: ProviderGoogle})
	assert.Error(t, err)
}
