package favorite

import (
	"context"

	"property_connect_backend/internal/property"

	"go.uber.org/zap"
)

// PropertyLookup resolves a property by id. property.Repository satisfies it.
type PropertyLookup interface {
	FindByID(ctx context.Context, id string) (*property.Property, error)
}

// Service defines the interface for favorite business logic.
type Service interface {
	Add(ctx context.Context, userID, propertyID string) (*Favorite, bool, error)
	Remove(ctx context.Context, userID, propertyID string) error
	ListProperties(ctx context.Context, userID string) ([]property.Property, error)
	ListPropertyIDs(ctx context.Context, userID string) ([]string, error)
}

// ServiceImplementation implements the favorite Service interface.
type ServiceImplementation struct {
	repo       Repository
	properties PropertyLookup
	logger     *zap.Logger
}

// NewService creates a new favorite service.
func NewService(repo Repository, properties PropertyLookup, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:       repo,
		properties: properties,
		logger:     logger.Named("favorite_service"),
	}
}

// Add saves the property for the user. Adding an existing pair succeeds with created == false.
func (s *ServiceImplementation) Add(ctx context.Context, userID, propertyID string) (*Favorite, bool, error) {
	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		return nil, false, err
	}
	fav, created, err := s.repo.Add(ctx, userID, propertyID)
	if err != nil {
		s.logger.Error("Failed to add favorite", zap.Error(err), zap.String("userID", userID), zap.String("propertyID", propertyID))
		return nil, false, err
	}
	return fav, created, nil
}

// Remove is idempotent; removing a pair that does not exist is not an error.
func (s *ServiceImplementation) Remove(ctx context.Context, userID, propertyID string) error {
	removed, err := s.repo.Remove(ctx, userID, propertyID)
	if err != nil {
		return err
	}
	if !removed {
		s.logger.Debug("Favorite already absent", zap.String("userID", userID), zap.String("propertyID", propertyID))
	}
	return nil
}

func (s *ServiceImplementation) ListProperties(ctx context.Context, userID string) ([]property.Property, error) {
	return s.repo.ListProperties(ctx, userID)
}

func (s *ServiceImplementation) ListPropertyIDs(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListPropertyIDs(ctx, userID)
}
