package user

import (
	"context"
	"errors"
	"fmt"

	"property_connect_backend/internal/common"

	"go.uber.org/zap"
)

// Service is the account API used by the auth and profile packages.
type Service interface {
	// LoginWithOAuth upserts the account behind an OAuth identity.
	// isNew reports whether no account with that id or email existed before.
	LoginWithOAuth(ctx context.Context, profile OAuthProfile) (u *User, isNew bool, err error)
	EnsureDevUser(ctx context.Context) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateNames(ctx context.Context, id string, firstName, lastName *string) error
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger.Named("user_service")}
}

func (s *ServiceImplementation) LoginWithOAuth(ctx context.Context, profile OAuthProfile) (*User, bool, error) {
	if profile.Provider == "" || profile.ProviderID == "" {
		return nil, false, common.ErrBadRequest.WithDetails("OAuth profile is missing its provider identity.")
	}
	userID := profile.UserID()

	_, err := s.repo.FindByIDOrEmail(ctx, userID, profile.Email)
	isNew := errors.Is(err, common.ErrNotFound)
	if err != nil && !isNew {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	first, last := SplitDisplayName(profile.DisplayName)
	u := &User{
		ID:              userID,
		Email:           profile.Email,
		FirstName:       &first,
		LastName:        &last,
		ProfileImageURL: strPtr(profile.ProfileImageURL),
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		s.logger.Error("Failed to upsert OAuth user", zap.Error(err), zap.String("userID", userID))
		return nil, false, err
	}

	s.logger.Info("OAuth login", zap.String("userID", userID), zap.String("provider", profile.Provider), zap.Bool("isNewUser", isNew))
	return u, isNew, nil
}

func (s *ServiceImplementation) EnsureDevUser(ctx context.Context) (*User, error) {
	u := DevUser()
	if err := s.repo.Upsert(ctx, u); err != nil {
		s.logger.Error("Failed to upsert local development user", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) UpdateNames(ctx context.Context, id string, firstName, lastName *string) error {
	if err := s.repo.UpdateNames(ctx, id, firstName, lastName); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		s.logger.Error("Failed to update user names", zap.Error(err), zap.String("userID", id))
		return err
	}
	return nil
}
