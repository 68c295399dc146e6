package notify

import (
	"context"
	"sync"
	"time"

	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/models"
)

// Reindexer refreshes the job index before a sweep.
type Reindexer interface {
	Reindex(ctx context.Context, jobs []models.Job) error
}

// MatchSummary describes one sweep.
type MatchSummary struct {
	Students      int `json:"students"`
	Notifications int `json:"notifications"`
	Failures      int `json:"failures"`
}

// MatchScheduler runs CheckJobMatches for every student on an interval.
type MatchScheduler struct {
	emitter     *Emitter
	reindexer   Reindexer
	interval    time.Duration
	concurrency int
	logger      logger.Logger
}

// NewMatchScheduler builds a scheduler. reindexer may be nil.
func NewMatchScheduler(e *Emitter, reindexer Reindexer, interval time.Duration, concurrency int, log logger.Logger) *MatchScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &MatchScheduler{
		emitter:     e,
		reindexer:   reindexer,
		interval:    interval,
		concurrency: concurrency,
		logger:      log.WithFields(map[string]interface{}{"component": "match-scheduler"}),
	}
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *MatchScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("job match sweep failed", map[string]interface{}{"error": err.Error()})
		}
		select {
		case <-ctx.Done():
			s.logger.Info("match scheduler stopped", nil)
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep. Per-student failures are counted, not returned.
func (s *MatchScheduler) RunOnce(ctx context.Context) (MatchSummary, error) {
	var summary MatchSummary
	st := s.emitter.store

	if s.reindexer != nil {
		jobs, err := st.Jobs.ListOpen(ctx, s.emitter.now())
		if err != nil {
			return summary, err
		}
		if err := s.reindexer.Reindex(ctx, jobs); err != nil {
			s.logger.Warn("job reindex failed", map[string]interface{}{"error": err.Error()})
		}
	}

	ids, err := st.Students.ListIDs(ctx)
	if err != nil {
		return summary, err
	}
	summary.Students = len(ids)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.concurrency)
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			defer func() { <-sem }()

			created, err := s.emitter.CheckJobMatches(ctx, studentID)
			mu.Lock()
			defer mu.Unlock()
			summary.Notifications += len(created)
			if err != nil {
				summary.Failures++
				s.logger.Warn("job match check failed", map[string]interface{}{
					"studentId": studentID,
					"error":     err.Error(),
				})
			}
		}(id)
	}
	wg.Wait()

	s.logger.Info("job match sweep finished", map[string]interface{}{
		"students":      summary.Students,
		"notifications": summary.Notifications,
		"failures":      summary.Failures,
	})
	return summary, ctx.Err()
}
