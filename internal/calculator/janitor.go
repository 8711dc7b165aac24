package calculator

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"go-chi-calculator/internal/observability"
)

// Janitor periodically evicts idle sessions from a Store.
type Janitor struct {
	scheduler gocron.Scheduler
	store     *Store
	ttl       time.Duration
}

// NewJanitor schedules eviction of sessions idle for ttl every interval.
// The job runs once Start is called.
func NewJanitor(store *Store, interval, ttl time.Duration) (*Janitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	j := &Janitor{
		scheduler: s,
		store:     store,
		ttl:       ttl,
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.sweep),
		gocron.WithName("session-eviction"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule session eviction: %w", err)
	}

	return j, nil
}

func (j *Janitor) Start() {
	j.scheduler.Start()
}

func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}

func (j *Janitor) sweep() {
	removed := j.store.Evict(j.ttl)
	if removed == 0 {
		return
	}

	observability.Logger.Info("idle sessions evicted",
		zap.Int("removed", removed),
		zap.Int("active", j.store.Len()),
		zap.Duration("ttl", j.ttl),
	)
}
