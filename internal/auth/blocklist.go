// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"time"

	"property_connect_backend/internal/config"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService remembers revoked session ids until the session would have expired anyway.
type TokenBlocklistService interface {
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}

// InMemoryBlocklistService keeps revoked ids in process memory. Revocations do not survive a restart
// and are not shared between replicas.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// InMemoryBlocklistConfig holds the configuration for the InMemoryBlocklistService.
type InMemoryBlocklistConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// NewInMemoryBlocklistService creates a new in-memory blocklist service.
func NewInMemoryBlocklistService(cfg InMemoryBlocklistConfig) *InMemoryBlocklistService {
	return &InMemoryBlocklistService{
		cache: cache.New(cfg.DefaultExpiration, cfg.CleanupInterval),
	}
}

// NewSessionBlocklist sizes the in-memory blocklist for the configured session lifetime.
func NewSessionBlocklist(cfg *config.Config) *InMemoryBlocklistService {
	return NewInMemoryBlocklistService(InMemoryBlocklistConfig{
		DefaultExpiration: cfg.SessionTTL,
		CleanupInterval:   10 * time.Minute,
	})
}

func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return nil
	}
	s.cache.Set(jti, struct{}{}, ttl)
	return nil
}

func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}
