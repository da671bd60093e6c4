package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/slopefinder/slopefinder/internal/store"
)

// Scheduler periodically purges expired search sessions from the store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  *store.SessionStore
	interval  time.Duration
}

// New creates a Scheduler sweeping the store every interval.
func New(sessions *store.SessionStore, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		interval:  interval,
	}
}

// Start schedules the purge job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		if purged := s.sessions.PurgeExpired(); purged > 0 {
			log.Printf("scheduler: purged %d expired search sessions", purged)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
