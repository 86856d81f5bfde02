package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/git-light-sync/internal/metrics"
	"github.com/haierkeys/git-light-sync/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	interval time.Duration
	startup  bool
	block    chan struct{}
	panicMsg string

	started chan Trigger

	mu        sync.Mutex
	runs      int
	active    int
	maxActive int
}

func newFakeTask(interval time.Duration, startup bool) *fakeTask {
	return &fakeTask{interval: interval, startup: startup, started: make(chan Trigger, 100)}
}

func (f *fakeTask) Name() string                { return "fake" }
func (f *fakeTask) LoopInterval() time.Duration { return f.interval }
func (f *fakeTask) IsStartupRun() bool          { return f.startup }

func (f *fakeTask) Run(_ context.Context, trigger Trigger) pipeline.Result {
	f.mu.Lock()
	f.runs++
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	f.started <- trigger
	if f.block != nil {
		<-f.block
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return pipeline.Result{Success: true}
}

func (f *fakeTask) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func (f *fakeTask) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

func waitStarted(t *testing.T, f *fakeTask) Trigger {
	t.Helper()
	select {
	case tr := <-f.started:
		return tr
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	return ""
}

func TestScheduler_StartupRunWithoutInterval(t *testing.T) {
	f := newFakeTask(0, true)
	s := NewScheduler(nil, f)
	s.Start()
	defer s.Stop()

	assert.Equal(t, TriggerStartup, waitStarted(t, f))

	// no recurring timer: nothing else happens
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.Runs())
}

func TestScheduler_NoStartupRun(t *testing.T) {
	f := newFakeTask(0, false)
	s := NewScheduler(nil, f)
	s.Start()
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.Runs())
	assert.Equal(t, StateIdle, s.State())
}

func TestScheduler_TicksRecur(t *testing.T) {
	f := newFakeTask(20*time.Millisecond, true)
	s := NewScheduler(nil, f)
	s.Start()
	defer s.Stop()

	assert.Equal(t, TriggerStartup, waitStarted(t, f))
	assert.Equal(t, TriggerTick, waitStarted(t, f))
	assert.Equal(t, TriggerTick, waitStarted(t, f))
}

func TestScheduler_StartTwiceIsNoop(t *testing.T) {
	f := newFakeTask(0, true)
	s := NewScheduler(nil, f)
	s.Start()
	s.Start()
	defer s.Stop()

	waitStarted(t, f)
	require.NoError(t, s.Wait(context.Background()))
	assert.Equal(t, 1, f.Runs())
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	f := newFakeTask(10*time.Millisecond, true)
	f.block = make(chan struct{})
	s := NewScheduler(nil, f)
	s.Start()
	defer s.Stop()

	waitStarted(t, f)
	assert.Equal(t, StateRunning, s.State())

	// several ticks elapse while the first run is still busy
	time.Sleep(80 * time.Millisecond)
	_, err := s.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Equal(t, 1, f.Runs())

	close(f.block)
	require.NoError(t, s.Wait(context.Background()))
	assert.Equal(t, 1, f.MaxActive())

	// skipped ticks are dropped, not queued: the next run needs a fresh tick
	assert.Equal(t, TriggerTick, waitStarted(t, f))
	assert.Equal(t, 1, f.MaxActive())
}

func TestScheduler_TriggerNow(t *testing.T) {
	f := newFakeTask(0, false)
	s := NewScheduler(nil, f)
	s.Start()
	defer s.Stop()

	res, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, TriggerManual, waitStarted(t, f))
	assert.Equal(t, StateIdle, s.State())

	res, err = s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, f.Runs())
}

func TestScheduler_StopDoesNotInterruptRun(t *testing.T) {
	f := newFakeTask(10*time.Millisecond, true)
	f.block = make(chan struct{})
	s := NewScheduler(nil, f)
	s.Start()

	waitStarted(t, f)
	s.Stop()
	assert.Equal(t, StateStopped, s.State())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)

	close(f.block)
	require.NoError(t, s.Wait(context.Background()))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.Runs())

	_, err := s.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerStopped)
	s.Stop()
}

func TestScheduler_StartAfterStop(t *testing.T) {
	f := newFakeTask(10*time.Millisecond, true)
	s := NewScheduler(nil, f)
	s.Stop()
	s.Start()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.Runs())
}

func TestScheduler_PanicIsRecovered(t *testing.T) {
	f := newFakeTask(0, false)
	f.panicMsg = "boom"
	s := NewScheduler(nil, f)
	defer s.Stop()

	res, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "panic: boom", res.Reason)
	assert.Equal(t, StateIdle, s.State())

	// the slot is free again
	f.panicMsg = ""
	res, err = s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestScheduler_RunningGaugeIsPerRun(t *testing.T) {
	base := testutil.ToFloat64(metrics.Running)

	first, second := newFakeTask(0, false), newFakeTask(0, false)
	first.block, second.block = make(chan struct{}), make(chan struct{})
	s1, s2 := NewScheduler(nil, first), NewScheduler(nil, second)

	done1, done2 := make(chan struct{}), make(chan struct{})
	go func() { defer close(done1); _, _ = s1.TriggerNow(context.Background()) }()
	go func() { defer close(done2); _, _ = s2.TriggerNow(context.Background()) }()
	waitStarted(t, first)
	waitStarted(t, second)
	assert.Equal(t, base+2, testutil.ToFloat64(metrics.Running))

	close(first.block)
	<-done1
	assert.Equal(t, base+1, testutil.ToFloat64(metrics.Running))

	close(second.block)
	<-done2
	assert.Equal(t, base, testutil.ToFloat64(metrics.Running))
}

func TestScheduler_IsRunningAfterStop(t *testing.T) {
	f := newFakeTask(0, false)
	f.block = make(chan struct{})
	s := NewScheduler(nil, f)
	assert.False(t, s.IsRunning())

	done := make(chan struct{})
	go func() { defer close(done); _, _ = s.TriggerNow(context.Background()) }()
	waitStarted(t, f)

	s.Stop()
	assert.Equal(t, StateStopped, s.State())
	assert.True(t, s.IsRunning())

	close(f.block)
	<-done
	assert.False(t, s.IsRunning())
}
