package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Refresher re-fetches a location regardless of what is cached. A warm pass
// that went through the cache would find entries just short of expiry and
// leave them to lapse.
type Refresher interface {
	Refresh(ctx context.Context, q weather.LocationQuery) (weather.Report, error)
}

// HomeWarmer reloads a located session without the cache shortcut.
type HomeWarmer interface {
	Warm(ctx context.Context) (weather.Report, error)
}

// Scheduler periodically re-acquires configured cities so that dashboard
// requests for them hit a warm cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	home      HomeWarmer
	cities    []string
	interval  time.Duration
}

// New creates a new Scheduler. home may be nil.
func New(cities []string, interval time.Duration, refresher Refresher, home HomeWarmer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		home:      home,
		cities:    cities,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The job runs once immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 && s.home == nil {
		log.Println("scheduler: nothing to warm")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.Run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Run performs one warm-up pass over every configured city and the home
// session.
func (s *Scheduler) Run() {
	log.Println("scheduler: running cache warm job")

	var wg sync.WaitGroup
	for _, city := range s.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := s.refresher.Refresh(ctx, weather.ByCity(city)); err != nil {
				log.Printf("scheduler: warm failed for %s: %v", city, err)
			}
		}()
	}

	if s.home != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := s.home.Warm(ctx); err != nil {
				log.Printf("scheduler: home refresh failed: %v", err)
			}
		}()
	}

	wg.Wait()
	log.Println("scheduler: completed cache warm job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
