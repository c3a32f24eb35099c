package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"khabar/internal/ingest"
)

const (
	FetchSpec             = "0 */6 * * *"
	CleanupSpec           = "30 2 * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	jobTimeout            = 15 * time.Minute
)

type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	fetcher *ingest.Fetcher
	log     *slog.Logger
}

func New(ctx context.Context, fetcher *ingest.Fetcher, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		fetcher: fetcher,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(FetchSpec, s.fetchNews); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(CleanupSpec, s.cleanupNews); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) fetchNews() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	saved, err := s.fetcher.FetchAndStoreAll(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch news",
			"error", err,
			"saved", saved)
	}
}

func (s *Scheduler) cleanupNews() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	if _, err := s.fetcher.Cleanup(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to clean up old articles",
			"error", err)
	}
}
