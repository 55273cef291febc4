// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// TokenPurger deletes refresh tokens that expired or were revoked before
// cutoff.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler wraps a gocron scheduler with the application's jobs.
type Scheduler struct {
	s   gocron.Scheduler
	log *zap.Logger
}

func New(log *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Scheduler{s: s, log: log.Named("scheduler")}, nil
}

// AddTokenPurge purges stale refresh tokens every interval.
func (sc *Scheduler) AddTokenPurge(tokens TokenPurger, every time.Duration) error {
	_, err := sc.s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { sc.purge(tokens) }),
		gocron.WithName("purge-refresh-tokens"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (sc *Scheduler) purge(tokens TokenPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := tokens.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		sc.log.Error("purge refresh tokens", zap.Error(err))
		return
	}
	sc.log.Info("refresh tokens purged", zap.Int64("deleted", n))
}

func (sc *Scheduler) Start() {
	sc.s.Start()
	sc.log.Info("scheduler started", zap.Int("jobs", len(sc.s.Jobs())))
}

func (sc *Scheduler) Shutdown() error { return sc.s.Shutdown() }
