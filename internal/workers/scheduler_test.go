package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

type mockWorker struct {
	*BaseWorker
	runCount int32
	runFunc  func(ctx context.Context) error
}

func newMockWorker(name string, interval time.Duration, enabled bool) *mockWorker {
	return &mockWorker{BaseWorker: NewBaseWorker(name, interval, enabled)}
}

func (m *mockWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&m.runCount, 1)
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	return nil
}

func (m *mockWorker) runs() int {
	return int(atomic.LoadInt32(&m.runCount))
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler()
	worker := newMockWorker("test-worker", 50*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())

	time.Sleep(130 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
	assert.False(t, scheduler.IsRunning())

	// immediate run plus at least one tick
	assert.GreaterOrEqual(t, worker.runs(), 2)
	assert.Equal(t, int64(worker.runs()), worker.Health().RunCount)
}

func TestScheduler_DisabledWorker(t *testing.T) {
	scheduler := NewScheduler()
	enabled := newMockWorker("enabled", 50*time.Millisecond, true)
	disabled := newMockWorker("disabled", 50*time.Millisecond, false)
	scheduler.RegisterWorker(enabled)
	scheduler.RegisterWorker(disabled)

	require.NoError(t, scheduler.Start(context.Background()))
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	assert.Greater(t, enabled.runs(), 0)
	assert.Equal(t, 0, disabled.runs())
}

func TestScheduler_RecordsErrorsAndPanics(t *testing.T) {
	scheduler := NewScheduler()

	failing := newMockWorker("failing", time.Hour, true)
	failing.runFunc = func(context.Context) error { return errors.ErrExternal }
	panicking := newMockWorker("panicking", time.Hour, true)
	panicking.runFunc = func(context.Context) error { panic("boom") }

	scheduler.RegisterWorker(failing)
	scheduler.RegisterWorker(panicking)

	require.NoError(t, scheduler.Start(context.Background()))
	require.Eventually(t, func() bool {
		return failing.Health().RunCount == 1 && panicking.Health().RunCount == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, scheduler.Stop())

	assert.Equal(t, int64(1), failing.Health().ErrorCount)
	assert.ErrorIs(t, failing.Health().LastError, errors.ErrExternal)
	assert.Equal(t, int64(1), panicking.Health().ErrorCount)
	assert.ErrorIs(t, panicking.Health().LastError, errors.ErrInternal)
}

func TestScheduler_ContextCancellation(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newMockWorker("test-worker", 50*time.Millisecond, true))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))
	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
}

func TestScheduler_StopTimeout(t *testing.T) {
	scheduler := NewScheduler().WithStopTimeout(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	stuck := newMockWorker("stuck", time.Hour, true)
	stuck.runFunc = func(context.Context) error {
		<-release
		return nil
	}
	scheduler.RegisterWorker(stuck)

	require.NoError(t, scheduler.Start(context.Background()))
	require.Eventually(t, func() bool { return stuck.runs() == 1 }, time.Second, 5*time.Millisecond)

	err := scheduler.Stop()
	assert.ErrorIs(t, err, errors.ErrTimeout)
}

func TestScheduler_CannotStartTwice(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newMockWorker("test-worker", time.Hour, true))

	require.NoError(t, scheduler.Start(context.Background()))
	assert.Error(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Stop())

	assert.Error(t, scheduler.Stop())
}

func TestScheduler_RegistrationOrder(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.RegisterWorker(newMockWorker("worker-1", time.Minute, true))
	scheduler.RegisterWorker(newMockWorker("worker-2", time.Minute, false))

	workers := scheduler.Workers()
	require.Len(t, workers, 2)
	assert.Equal(t, "worker-1", workers[0].Name())
	assert.Equal(t, "worker-2", workers[1].Name())
}

func TestBaseWorker_Health(t *testing.T) {
	w := NewBaseWorker("health", time.Minute, true)
	w.Record(10*time.Millisecond, nil)
	w.Record(30*time.Millisecond, errors.ErrTimeout)

	h := w.Health()
	assert.Equal(t, int64(2), h.RunCount)
	assert.Equal(t, int64(1), h.ErrorCount)
	assert.Equal(t, 20*time.Millisecond, h.AvgDuration)
	assert.ErrorIs(t, h.LastError, errors.ErrTimeout)

	w.SetEnabled(false)
	assert.False(t, w.Health().Enabled)
}
