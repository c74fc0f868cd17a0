// Package jobs holds the background jobs run on the in-process cron scheduler.
package jobs

import (
	"context"
	"time"

	"property_connect_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reindexBatchSize = 200
	reindexTimeout   = 30 * time.Minute
)

// Reindexer rebuilds the search index from the database.
type Reindexer interface {
	ReindexAll(ctx context.Context, batchSize int) (int, error)
}

// SearchStatus reports whether a search backend is configured.
type SearchStatus interface {
	Enabled() bool
}

// SearchReindexJob periodically re-syncs every property into Elasticsearch so that
// documents missed by best-effort indexing on writes are repaired.
type SearchReindexJob struct {
	properties    Reindexer
	search        SearchStatus
	schedule      string
	logger        *zap.Logger
	cronScheduler *cron.Cron
}

// NewSearchReindexJob creates a new SearchReindexJob.
func NewSearchReindexJob(properties Reindexer, search SearchStatus, cfg *config.Config, logger *zap.Logger) *SearchReindexJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &SearchReindexJob{
		properties:    properties,
		search:        search,
		schedule:      cfg.SearchReindexJobSchedule,
		logger:        logger.Named("SearchReindexJob"),
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules the job and starts the scheduler. Nothing is scheduled when
// search is disabled or no schedule is configured.
func (j *SearchReindexJob) SetupAndStart() error {
	if !j.search.Enabled() {
		j.logger.Info("Search is disabled, reindex job not scheduled")
		return nil
	}
	if j.schedule == "" {
		j.logger.Warn("Search reindex schedule not defined (SEARCH_REINDEX_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule search reindex job", zap.String("spec", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Search reindex job scheduled", zap.String("spec", j.schedule), zap.Int("jobID", int(jobID)))
	j.cronScheduler.Start()
	return nil
}

func (j *SearchReindexJob) runJob() {
	j.logger.Info("Starting search reindex run")
	ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
	defer cancel()

	start := time.Now()
	indexed, err := j.properties.ReindexAll(ctx, reindexBatchSize)
	if err != nil {
		j.logger.Error("Search reindex run failed", zap.Error(err), zap.Int("indexed", indexed))
		return
	}
	j.logger.Info("Search reindex run completed", zap.Int("indexed", indexed), zap.Duration("took", time.Since(start)))
}

// Stop stops the scheduler and waits up to ten seconds for a running job.
func (j *SearchReindexJob) Stop() {
	j.logger.Info("Stopping search reindex scheduler")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Search reindex scheduler stopped")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Search reindex scheduler stop timed out")
	}
}
