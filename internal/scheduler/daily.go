// Package scheduler runs the sync cycle once a day at a configured time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/domain"
)

// DefaultCooldown is the pause after a failed cycle
const DefaultCooldown = 5 * time.Minute

var (
	// ErrBusy is returned when a cycle is already running
	ErrBusy = errors.New("a cycle is already running")
	// ErrNotRunning is returned when the loop has not been started
	ErrNotRunning = errors.New("scheduler is not running")
)

var timeParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Runner executes one cycle
type Runner interface {
	RunCycle(ctx context.Context) (*domain.CycleResult, error)
}

// State is the scheduler lifecycle state
type State string

const (
	StateIdle     State = "idle"
	StateWaiting  State = "waiting"
	StateRunning  State = "running"
	StateCooldown State = "cooldown"
	StateStopped  State = "stopped"
)

// Status is a point-in-time snapshot of the scheduler
type Status struct {
	State         State               `json:"state"`
	ExecutionTime string              `json:"execution_time"`
	Schedule      string              `json:"schedule,omitempty"`
	NextRun       *time.Time          `json:"next_run,omitempty"`
	Cycles        int                 `json:"cycles"`
	Failures      int                 `json:"failures"`
	LastResult    *domain.CycleResult `json:"last_result,omitempty"`
}

// Config configures the daily loop
type Config struct {
	ExecutionTime string // HH:mm or HH:mm:ss, local time
	Runner        Runner
	Log           zerolog.Logger
	Cooldown      time.Duration

	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Scheduler waits for the daily execution time and runs one cycle. Cycles
// never overlap.
type Scheduler struct {
	execTime string
	runner   Runner
	log      zerolog.Logger
	cooldown time.Duration
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	runMu sync.Mutex // Held while a cycle runs
	wg    sync.WaitGroup

	mu     sync.RWMutex
	status Status
	base   context.Context
}

// New creates a scheduler
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		execTime: cfg.ExecutionTime,
		runner:   cfg.Runner,
		log:      cfg.Log.With().Str("component", "scheduler").Logger(),
		cooldown: cfg.Cooldown,
		now:      cfg.Now,
		after:    cfg.After,
		status:   Status{State: StateIdle, ExecutionTime: cfg.ExecutionTime},
	}
	if s.cooldown <= 0 {
		s.cooldown = DefaultCooldown
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.after == nil {
		s.after = time.After
	}
	return s
}

// ParseTime converts a time of day into a daily cron schedule. It returns
// the schedule together with its six-field spec.
func ParseTime(value string) (cron.Schedule, string, error) {
	value = strings.TrimSpace(value)

	var t time.Time
	var err error
	switch strings.Count(value, ":") {
	case 1:
		t, err = time.Parse("15:04", value)
	case 2:
		t, err = time.Parse("15:04:05", value)
	default:
		err = errors.New("expected HH:mm or HH:mm:ss")
	}
	if err != nil {
		return nil, "", fmt.Errorf("invalid execution time %q: %w", value, err)
	}

	spec := fmt.Sprintf("%d %d %d * * *", t.Second(), t.Minute(), t.Hour())
	sched, err := timeParser.Parse(spec)
	if err != nil {
		return nil, "", fmt.Errorf("invalid execution time %q: %w", value, err)
	}
	return sched, spec, nil
}

// Run blocks until ctx is cancelled. An unparsable execution time halts the
// loop and is returned; every other failure is logged and followed by a
// cooldown.
func (s *Scheduler) Run(ctx context.Context) error {
	sched, spec, err := ParseTime(s.execTime)
	if err != nil {
		s.log.WithLevel(zerolog.FatalLevel).Err(err).Msg("Scheduler halted")
		s.setState(StateStopped)
		return err
	}

	s.mu.Lock()
	s.base = ctx
	s.status.Schedule = spec
	s.mu.Unlock()

	defer func() {
		s.wg.Wait()
		s.mu.Lock()
		s.base = nil
		s.status.State = StateStopped
		s.status.NextRun = nil
		s.mu.Unlock()
		s.log.Info().Msg("Scheduler stopped")
	}()

	s.log.Info().Str("execution_time", s.execTime).Str("schedule", spec).Msg("Scheduler started")

	var last time.Time
	for {
		from := s.now()
		if from.Before(last) {
			from = last
		}
		next := sched.Next(from)
		last = next
		s.setWaiting(next)
		s.log.Info().Time("next_run", next).Msg("Waiting for next execution")

		if !s.sleep(ctx, next.Sub(s.now())) {
			return nil
		}

		s.runMu.Lock()
		err := s.execute(ctx)
		s.runMu.Unlock()

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.log.WithLevel(zerolog.FatalLevel).
				Err(err).
				Dur("cooldown", s.cooldown).
				Msg("Scheduler loop failure, cooling down")
			s.setState(StateCooldown)
			if !s.sleep(ctx, s.cooldown) {
				return nil
			}
		}
	}
}

// TryRunNow starts an out-of-schedule cycle in the background. It fails
// with ErrBusy while another cycle runs.
func (s *Scheduler) TryRunNow() error {
	s.mu.RLock()
	ctx := s.base
	s.mu.RUnlock()
	if ctx == nil {
		return ErrNotRunning
	}
	if !s.runMu.TryLock() {
		return ErrBusy
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.runMu.Unlock()

		s.log.Info().Msg("Running cycle on demand")
		if err := s.execute(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("On-demand cycle failed")
		}
	}()
	return nil
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.status
	if st.NextRun != nil {
		next := *st.NextRun
		st.NextRun = &next
	}
	if st.LastResult != nil {
		last := *st.LastResult
		st.LastResult = &last
	}
	return st
}

// execute runs one cycle. The caller must hold runMu.
func (s *Scheduler) execute(ctx context.Context) (err error) {
	s.mu.Lock()
	prev := s.status.State
	s.status.State = StateRunning
	s.mu.Unlock()

	var result *domain.CycleResult
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
			s.log.Error().Str("stack", string(debug.Stack())).Msg("Recovered cycle panic")
		}

		s.mu.Lock()
		s.status.Cycles++
		if (err != nil && ctx.Err() == nil) || (result != nil && result.Status == domain.CycleFailed) {
			s.status.Failures++
		}
		if result != nil {
			s.status.LastResult = result
		}
		if s.status.State == StateRunning {
			s.status.State = prev
		}
		s.mu.Unlock()
	}()

	result, err = s.runner.RunCycle(ctx)
	return err
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.after(d):
		return ctx.Err() == nil
	}
}

func (s *Scheduler) setWaiting(next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = StateWaiting
	s.status.NextRun = &next
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = state
}
