package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/posleasing/leasesync/internal/domain"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunCycle(ctx context.Context) (*domain.CycleResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CycleResult), args.Error(1)
}

// fakeClock fires every wait immediately and records the requested durations.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

func newScheduler(execTime string, runner Runner, clock *fakeClock) *Scheduler {
	return New(Config{
		ExecutionTime: execTime,
		Runner:        runner,
		Log:           zerolog.Nop(),
		Now:           clock.Now,
		After:         clock.After,
	})
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input    string
		wantSpec string
		wantErr  bool
	}{
		{"23:00", "0 0 23 * * *", false},
		{"06:30:15", "15 30 6 * * *", false},
		{" 7:05 ", "0 5 7 * * *", false},
		{"00:00", "0 0 0 * * *", false},
		{"25:00", "", true},
		{"12:61", "", true},
		{"noon", "", true},
		{"", "", true},
		{"1:2:3:4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sched, spec, err := ParseTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, sched)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSpec, spec)
		})
	}
}

func TestParseTime_NextRun(t *testing.T) {
	sched, _, err := ParseTime("23:00")
	require.NoError(t, err)

	before := time.Date(2024, time.March, 10, 22, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, time.March, 10, 23, 0, 0, 0, time.Local), sched.Next(before))

	after := time.Date(2024, time.March, 10, 23, 30, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, time.March, 11, 23, 0, 0, 0, time.Local), sched.Next(after))

	exact := time.Date(2024, time.March, 10, 23, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, time.March, 11, 23, 0, 0, 0, time.Local), sched.Next(exact))
}

func TestRun_InvalidTimeHalts(t *testing.T) {
	runner := new(MockRunner)
	clock := &fakeClock{now: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)}
	s := newScheduler("not-a-time", runner, clock)

	err := s.Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateStopped, s.Status().State)
	runner.AssertNotCalled(t, "RunCycle", mock.Anything)
}

func TestRun_WaitsUntilExecutionTime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := new(MockRunner)
	result := domain.NewCycleResult(time.Now())
	runner.On("RunCycle", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(result, nil).Once()

	clock := &fakeClock{now: time.Date(2024, time.March, 10, 22, 30, 0, 0, time.Local)}
	s := newScheduler("23:00", runner, clock)

	require.NoError(t, s.Run(ctx))

	waits := clock.Waits()
	require.NotEmpty(t, waits)
	assert.Equal(t, 30*time.Minute, waits[0])
	runner.AssertNumberOfCalls(t, "RunCycle", 1)

	st := s.Status()
	assert.Equal(t, StateStopped, st.State)
	assert.Equal(t, 1, st.Cycles)
	assert.Equal(t, 0, st.Failures)
	assert.Equal(t, "0 0 23 * * *", st.Schedule)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, result.ID, st.LastResult.ID)
}

func TestRun_RunsDaily(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := new(MockRunner)
	runner.On("RunCycle", mock.Anything).Return(domain.NewCycleResult(time.Now()), nil).Once()
	runner.On("RunCycle", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(domain.NewCycleResult(time.Now()), nil).Once()

	clock := &fakeClock{now: time.Date(2024, time.March, 10, 23, 30, 0, 0, time.Local)}
	s := newScheduler("23:00", runner, clock)

	require.NoError(t, s.Run(ctx))

	waits := clock.Waits()
	require.GreaterOrEqual(t, len(waits), 2)
	assert.Equal(t, 23*time.Hour+30*time.Minute, waits[0])
	assert.Equal(t, 24*time.Hour, waits[1])
	runner.AssertNumberOfCalls(t, "RunCycle", 2)
	assert.Equal(t, 2, s.Status().Cycles)
}

func TestRun_FailureCoolsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := new(MockRunner)
	runner.On("RunCycle", mock.Anything).Return(nil, errors.New("unexpected")).Once()
	runner.On("RunCycle", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(domain.NewCycleResult(time.Now()), nil).Once()

	clock := &fakeClock{now: time.Date(2024, time.March, 10, 22, 0, 0, 0, time.Local)}
	s := newScheduler("23:00", runner, clock)

	require.NoError(t, s.Run(ctx))

	waits := clock.Waits()
	require.GreaterOrEqual(t, len(waits), 2)
	assert.Equal(t, time.Hour, waits[0])
	assert.Equal(t, DefaultCooldown, waits[1])
	assert.Equal(t, 1, s.Status().Failures)
}

func TestRun_PanicCoolsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := new(MockRunner)
	runner.On("RunCycle", mock.Anything).Run(func(mock.Arguments) { panic("boom") }).Once()
	runner.On("RunCycle", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(domain.NewCycleResult(time.Now()), nil).Once()

	clock := &fakeClock{now: time.Date(2024, time.March, 10, 22, 0, 0, 0, time.Local)}
	s := newScheduler("23:00", runner, clock)

	assert.NotPanics(t, func() { require.NoError(t, s.Run(ctx)) })

	waits := clock.Waits()
	require.GreaterOrEqual(t, len(waits), 2)
	assert.Equal(t, DefaultCooldown, waits[1])
	runner.AssertNumberOfCalls(t, "RunCycle", 2)
}

func TestRun_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := new(MockRunner)
	s := New(Config{
		ExecutionTime: "23:00",
		Runner:        runner,
		Log:           zerolog.Nop(),
		After:         func(time.Duration) <-chan time.Time { return make(chan time.Time) },
	})

	require.NoError(t, s.Run(ctx))
	runner.AssertNotCalled(t, "RunCycle", mock.Anything)
	assert.Equal(t, StateStopped, s.Status().State)
}

func TestTryRunNow(t *testing.T) {
	t.Run("not running", func(t *testing.T) {
		s := New(Config{ExecutionTime: "23:00", Runner: new(MockRunner), Log: zerolog.Nop()})
		assert.ErrorIs(t, s.TryRunNow(), ErrNotRunning)
	})

	t.Run("runs once and rejects overlap", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		release := make(chan struct{})
		started := make(chan struct{})
		runner := new(MockRunner)
		runner.On("RunCycle", mock.Anything).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(domain.NewCycleResult(time.Now()), nil).Once()

		s := New(Config{
			ExecutionTime: "23:00",
			Runner:        runner,
			Log:           zerolog.Nop(),
			After:         func(time.Duration) <-chan time.Time { return make(chan time.Time) },
		})

		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		require.Eventually(t, func() bool { return s.Status().State == StateWaiting }, time.Second, 5*time.Millisecond)
		require.NoError(t, s.TryRunNow())
		<-started

		assert.ErrorIs(t, s.TryRunNow(), ErrBusy)
		assert.Equal(t, StateRunning, s.Status().State)

		close(release)
		require.Eventually(t, func() bool { return s.Status().Cycles == 1 }, time.Second, 5*time.Millisecond)

		cancel()
		require.NoError(t, <-done)
		runner.AssertNumberOfCalls(t, "RunCycle", 1)
	})
}
