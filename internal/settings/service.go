package settings

import (
	"context"
	"time"

	"property_connect_backend/internal/platform/cache"

	"go.uber.org/zap"
)

const cacheKey = "app_settings:default"

// Service reads and updates the app settings singleton.
type Service interface {
	Get(ctx context.Context) (*AppSettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (*AppSettings, error)
}

// ServiceImplementation implements Service with a read-through cache.
type ServiceImplementation struct {
	repo   Repository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new settings service.
func NewService(repo Repository, c cache.Cache, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, cache: c, ttl: 10 * time.Minute, logger: logger.Named("settings_service")}
}

func (s *ServiceImplementation) Get(ctx context.Context) (*AppSettings, error) {
	var cached AppSettings
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.logger.Warn("Settings cache read failed", zap.Error(err))
	} else if found {
		return &cached, nil
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, settings, s.ttl); err != nil {
		s.logger.Warn("Settings cache write failed", zap.Error(err))
	}
	return settings, nil
}

func (s *ServiceImplementation) Update(ctx context.Context, req UpdateSettingsRequest) (*AppSettings, error) {
	settings, err := s.repo.Update(ctx, req)
	if err != nil {
		s.logger.Error("Failed to update app settings", zap.Error(err))
		return nil, err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("Settings cache invalidation failed", zap.Error(err))
	}
	s.logger.Info("App settings updated")
	return settings, nil
}
