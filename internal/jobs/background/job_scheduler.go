package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"hardwarestore/internal/metrics"
	"hardwarestore/pkg/logger"
)

// Task is one run of a scheduled job.
type Task func(ctx context.Context) error

// JobScheduler runs the periodic store jobs. Every job runs in singleton mode
// so a slow run is never overlapped by the next tick.
type JobScheduler struct {
	scheduler gocron.Scheduler
	metrics   *metrics.CronJobMetrics
	log       *logger.Logger
	timeout   time.Duration
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates an idle scheduler. timeout bounds a single run; zero
// leaves runs unbounded.
func NewJobScheduler(m *metrics.CronJobMetrics, log *logger.Logger, timeout time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &JobScheduler{
		scheduler: scheduler,
		metrics:   m,
		log:       log,
		timeout:   timeout,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

func (js *JobScheduler) Start() {
	js.log.Info(context.Background(), "starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.log.Info(context.Background(), "stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// Register schedules task every interval under name. Registering a name twice
// replaces the earlier job.
func (js *JobScheduler) Register(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	if existing, ok := js.jobs[name]; ok {
		if err := js.scheduler.RemoveJob(existing.ID()); err != nil {
			return fmt.Errorf("replace job %s: %w", name, err)
		}
		delete(js.jobs, name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.instrument(name, task)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	js.jobs[name] = job

	js.log.Info(js.log.WithFields(context.Background(), map[string]any{
		"job":      name,
		"interval": interval.String(),
	}), "registered job")
	return nil
}

func (js *JobScheduler) Remove(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, ok := js.jobs[name]
	if !ok {
		return nil
	}
	delete(js.jobs, name)
	return js.scheduler.RemoveJob(job.ID())
}

// JobNames lists the registered jobs in name order.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// instrument wraps task with timing, outcome counters and logging.
func (js *JobScheduler) instrument(name string, task Task) func() {
	return func() {
		ctx := js.log.WithField(context.Background(), "job", name)
		if js.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, js.timeout)
			defer cancel()
		}

		start := time.Now()
		err := task(ctx)
		js.metrics.ObserveDuration(name, time.Since(start))

		if err != nil {
			js.metrics.IncFailure(name)
			js.log.Error(ctx, "job failed", err)
			return
		}
		js.metrics.IncSuccess(name)
		js.log.Debug(ctx, "job finished")
	}
}
