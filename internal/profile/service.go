package profile

import (
	"context"
	"errors"
	"strings"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/user"

	"go.uber.org/zap"
)

// Service is the profile and admin-gate API.
type Service interface {
	// GetOrCreate returns the caller's profile, creating it with defaults on first access.
	GetOrCreate(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, req UpdateProfileRequest) (*Profile, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo    Repository
	userSvc user.Service
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new profile service.
func NewService(repo Repository, userSvc user.Service, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, userSvc: userSvc, logger: logger.Named("profile_service")}
}

func (s *ServiceImplementation) GetOrCreate(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	lang := LanguageEnglish
	p, err = s.repo.Upsert(ctx, userID, Fields{PreferredLanguage: &lang})
	if err != nil {
		s.logger.Error("Failed to create profile", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}
	if p.IsAdmin {
		s.logger.Info("Initial admin granted", zap.String("userID", userID))
	}
	return p, nil
}

func (s *ServiceImplementation) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*Profile, error) {
	first, last := accountNames(req)
	if first != nil || last != nil {
		if err := s.userSvc.UpdateNames(ctx, userID, first, last); err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	p, err := s.repo.Upsert(ctx, userID, req.Fields())
	if err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}
	return p, nil
}

// accountNames picks the account name changes implied by a profile update.
// Explicit first/last names win; otherwise a display name is split on whitespace.
func accountNames(req UpdateProfileRequest) (first, last *string) {
	if req.FirstName != nil || req.LastName != nil {
		return req.FirstName, req.LastName
	}
	if req.DisplayName == nil || strings.TrimSpace(*req.DisplayName) == "" {
		return nil, nil
	}
	f, l := user.SplitDisplayName(*req.DisplayName)
	first = &f
	if l != "" {
		last = &l
	}
	return first, last
}

func (s *ServiceImplementation) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.IsAdmin(ctx, userID)
}
