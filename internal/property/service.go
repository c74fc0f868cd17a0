// File: internal/property/service.go
package property

import (
	"context"
	"fmt"
	"time"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/platform/cache"

	"go.uber.org/zap"
)

const searchGenerationKey = "properties:search:gen"

// ViewTracker decides whether a detail fetch counts as a view and records it.
type ViewTracker interface {
	// TrackView returns true when a view was recorded and the counter incremented.
	TrackView(ctx context.Context, propertyID string, viewer Viewer) (bool, error)
}

// AdminChecker reports whether a user holds the admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// SearchIndexer mirrors properties into the search index. A disabled indexer accepts every
// write as a no-op and reports Enabled() == false.
type SearchIndexer interface {
	Enabled() bool
	Index(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
	BulkIndex(ctx context.Context, props []Property) error
	// Nearby returns property ids ordered by distance from (lat, lon).
	Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]string, error)
}

// Service defines the interface for property business logic.
type Service interface {
	Search(ctx context.Context, q SearchQuery) ([]Property, *common.Pagination, error)
	GetByID(ctx context.Context, id string, viewer Viewer) (*Property, error)
	Create(ctx context.Context, userID string, req CreatePropertyRequest) (*Property, error)
	Update(ctx context.Context, id, userID string, req UpdatePropertyRequest) (*Property, error)
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string, includeSold bool) ([]Property, error)
	Nearby(ctx context.Context, q NearbyQuery) ([]Property, error)
	// ReindexAll pushes every property to the search index and returns how many were sent.
	ReindexAll(ctx context.Context, batchSize int) (int, error)
}

// ServiceImplementation implements the property Service interface.
type ServiceImplementation struct {
	repo    Repository
	views   ViewTracker
	admins  AdminChecker
	indexer SearchIndexer
	cache   cache.Cache
	cfg     *config.Config
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new property service.
func NewService(
	repo Repository,
	views ViewTracker,
	admins AdminChecker,
	indexer SearchIndexer,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		views:   views,
		admins:  admins,
		indexer: indexer,
		cache:   c,
		cfg:     cfg,
		logger:  logger.Named("property_service"),
	}
}

func (s *ServiceImplementation) searchCacheKey(ctx context.Context, q SearchQuery) string {
	var gen int64
	if _, err := s.cache.Get(ctx, searchGenerationKey, &gen); err != nil {
		s.logger.Warn("Search cache generation read failed", zap.Error(err))
	}
	return cache.QueryKey(fmt.Sprintf("properties:search:%d", gen), q.CacheParams())
}

// invalidateSearch makes every cached search page unreachable by bumping the key generation.
func (s *ServiceImplementation) invalidateSearch(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, searchGenerationKey); err != nil {
		s.logger.Warn("Search cache invalidation failed", zap.Error(err))
	}
}

// refreshViews overlays live view counts on a cached page. View counting does not
// invalidate the search cache, so the cached counts lag behind the detail endpoint.
func (s *ServiceImplementation) refreshViews(ctx context.Context, props []Property) {
	if len(props) == 0 {
		return
	}
	ids := make([]string, len(props))
	for i := range props {
		ids[i] = props[i].ID
	}
	counts, err := s.repo.ViewCounts(ctx, ids)
	if err != nil {
		s.logger.Warn("Refreshing cached view counts failed", zap.Error(err))
		return
	}
	for i := range props {
		if views, ok := counts[props[i].ID]; ok {
			props[i].Views = views
		}
	}
}

func (s *ServiceImplementation) Search(ctx context.Context, q SearchQuery) ([]Property, *common.Pagination, error) {
	q.Page, q.Limit = common.NormalizePage(q.Page, q.Limit)

	key := s.searchCacheKey(ctx, q)
	var cached SearchPage
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found && cached.Pagination != nil {
		s.refreshViews(ctx, cached.Properties)
		return cached.Properties, cached.Pagination, nil
	} else if err != nil {
		s.logger.Warn("Search cache read failed", zap.Error(err), zap.String("key", key))
	}

	props, pagination, err := s.repo.Search(ctx, q)
	if err != nil {
		s.logger.Error("Property search failed", zap.Error(err))
		return nil, nil, err
	}

	if s.cfg.SearchCacheTTL > 0 {
		if err := s.cache.Set(ctx, key, SearchPage{Properties: props, Pagination: pagination}, s.cfg.SearchCacheTTL); err != nil {
			s.logger.Warn("Search cache write failed", zap.Error(err), zap.String("key", key))
		}
	}
	return props, pagination, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id string, viewer Viewer) (*Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer.UserID != "" && viewer.UserID == p.UserID {
		return p, nil
	}

	counted, err := s.views.TrackView(ctx, id, viewer)
	if err != nil {
		// A failed view count never hides the listing.
		s.logger.Warn("Failed to track property view", zap.Error(err), zap.String("propertyID", id))
		return p, nil
	}
	if !counted {
		return p, nil
	}

	refreshed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to reload property after view", zap.Error(err), zap.String("propertyID", id))
		p.Views++
		return p, nil
	}
	return refreshed, nil
}

func (s *ServiceImplementation) Create(ctx context.Context, userID string, req CreatePropertyRequest) (*Property, error) {
	p := req.ToProperty(userID)
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create property", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}
	s.afterWrite(ctx, p)
	s.logger.Info("Property created", zap.String("propertyID", p.ID), zap.String("userID", userID))
	return p, nil
}

func (s *ServiceImplementation) Update(ctx context.Context, id, userID string, req UpdatePropertyRequest) (*Property, error) {
	p, err := s.repo.Update(ctx, id, userID, req.Updates())
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, p)
	return p, nil
}

func (s *ServiceImplementation) afterWrite(ctx context.Context, p *Property) {
	s.invalidateSearch(ctx)
	if err := s.indexer.Index(ctx, p); err != nil {
		s.logger.Warn("Failed to index property", zap.Error(err), zap.String("propertyID", p.ID))
	}
}

func (s *ServiceImplementation) Delete(ctx context.Context, id, userID string) error {
	isAdmin, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID, isAdmin); err != nil {
		return err
	}

	s.invalidateSearch(ctx)
	if err := s.indexer.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to remove property from index", zap.Error(err), zap.String("propertyID", id))
	}
	s.logger.Info("Property deleted", zap.String("propertyID", id), zap.String("userID", userID), zap.Bool("asAdmin", isAdmin))
	return nil
}

func (s *ServiceImplementation) ListByUser(ctx context.Context, userID string, includeSold bool) ([]Property, error) {
	return s.repo.FindByUserID(ctx, userID, includeSold)
}

func (s *ServiceImplementation) Nearby(ctx context.Context, q NearbyQuery) ([]Property, error) {
	if !s.indexer.Enabled() {
		return nil, common.ErrServiceUnavailable.WithDetails("Map search is not configured.")
	}
	radius := q.RadiusKm
	if radius <= 0 {
		radius = 10
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	ids, err := s.indexer.Nearby(ctx, *q.Lat, *q.Lon, radius, limit)
	if err != nil {
		s.logger.Error("Nearby search failed", zap.Error(err))
		return nil, err
	}
	props, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Keep the index's distance order; ids that no longer exist in the database are dropped.
	byID := make(map[string]Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}
	ordered := make([]Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *ServiceImplementation) ReindexAll(ctx context.Context, batchSize int) (int, error) {
	return Reindex(ctx, s.repo, s.indexer, batchSize, s.logger)
}

// Reindex streams every stored property into the search index in batches of batchSize.
// It is shared by the scheduled job and the sync-properties command.
func Reindex(ctx context.Context, repo Repository, indexer SearchIndexer, batchSize int, logger *zap.Logger) (int, error) {
	if !indexer.Enabled() {
		return 0, common.ErrServiceUnavailable.WithDetails("Search is not configured.")
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	start := time.Now()
	total := 0
	err := repo.FindInBatches(ctx, batchSize, func(batch []Property) error {
		if err := indexer.BulkIndex(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		logger.Debug("Indexed property batch", zap.Int("batchSize", len(batch)), zap.Int("totalSoFar", total))
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("reindex failed after %d properties: %w", total, err)
	}
	logger.Info("Search reindex complete", zap.Int("properties", total), zap.Duration("took", time.Since(start)))
	return total, nil
}
