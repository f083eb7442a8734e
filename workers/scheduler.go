// workers/scheduler.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var ErrUnknownTask = errors.New("unknown task")

// Task is one periodic job. Run receives the context passed to Start, or the
// one passed to Tick.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs registered tasks on a gocron scheduler. A task never
// overlaps with itself; a late run is rescheduled instead of queued.
type Scheduler struct {
	mu      sync.Mutex
	cron    gocron.Scheduler
	tasks   map[string]Task
	order   []string
	log     *slog.Logger
	started bool
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cron, err := gocron.NewScheduler(gocron.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		cron:  cron,
		tasks: make(map[string]Task),
		log:   logger,
	}, nil
}

func (s *Scheduler) Register(tasks ...Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	for _, t := range tasks {
		if t.Name == "" || t.Run == nil {
			return fmt.Errorf("task %q: name and run func are required", t.Name)
		}
		if t.Interval <= 0 {
			return fmt.Errorf("task %q: interval must be positive", t.Name)
		}
		if _, dup := s.tasks[t.Name]; dup {
			return fmt.Errorf("task %q registered twice", t.Name)
		}
		s.tasks[t.Name] = t
		s.order = append(s.order, t.Name)
	}
	return nil
}

// Names lists registered tasks in registration order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Start schedules every task and returns. Cancelling ctx shuts the
// scheduler down.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	for _, name := range s.order {
		t := s.tasks[name]
		_, err := s.cron.NewJob(
			gocron.DurationJob(t.Interval),
			gocron.NewTask(func() { s.run(ctx, t) }),
			gocron.WithName(t.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", t.Name, err)
		}
	}
	s.cron.Start()
	s.started = true
	s.log.Info("scheduler started", "tasks", len(s.order))

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.log.Warn("scheduler shutdown", "error", err)
		}
	}()
	return nil
}

// Tick runs the named task once on the calling goroutine.
func (s *Scheduler) Tick(ctx context.Context, name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownTask)
	}
	return t.Run(ctx)
}

func (s *Scheduler) run(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		s.log.Error("task failed", "task", t.Name, "error", err)
		return
	}
	s.log.Debug("task done", "task", t.Name, "took", time.Since(start))
}

// Shutdown stops every job and waits for running ones. Safe to call twice.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	return s.cron.Shutdown()
}
