package propertyview

import (
	"context"
	"time"

	"property_connect_backend/internal/config"
	"property_connect_backend/internal/property"

	"go.uber.org/zap"
)

const defaultDedupWindow = time.Hour

// Tracker counts property detail views, at most one per viewer identity per window.
type Tracker struct {
	repo   Repository
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
}

var _ property.ViewTracker = (*Tracker)(nil)

// NewTracker creates a view tracker using VIEW_DEDUP_WINDOW_MINUTES as the dedup window.
func NewTracker(repo Repository, cfg *config.Config, logger *zap.Logger) *Tracker {
	window := cfg.ViewDedupWindow
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Tracker{
		repo:   repo,
		window: window,
		now:    time.Now,
		logger: logger.Named("view_tracker"),
	}
}

// TrackView records a view unless the same identity viewed the property within the window.
// Anonymous viewers without an IP are never counted.
func (t *Tracker) TrackView(ctx context.Context, propertyID string, viewer property.Viewer) (bool, error) {
	if viewer.UserID == "" && viewer.IP == "" {
		return false, nil
	}

	now := t.now().UTC()
	seen, err := t.repo.HasViewedSince(ctx, propertyID, viewer, now.Add(-t.window))
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	view := &PropertyView{PropertyID: propertyID, ViewedAt: now}
	if viewer.UserID != "" {
		view.UserID = &viewer.UserID
	}
	if viewer.IP != "" {
		view.ViewerIP = &viewer.IP
	}
	if err := t.repo.RecordAndIncrement(ctx, view); err != nil {
		return false, err
	}
	t.logger.Debug("Property view counted", zap.String("propertyID", propertyID), zap.Bool("authenticated", viewer.UserID != ""))
	return true, nil
}
