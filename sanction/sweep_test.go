package sanction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanction-bot/model"
)

func TestSweepReversesOnlyExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.engine.Issue(ctx, muteRequest("user-1", "10m"))
	require.NoError(t, err)
	perm, err := f.engine.Issue(ctx, muteRequest("user-2", "forever"))
	require.NoError(t, err)

	// Simulate a lost timer.
	require.True(t, f.engine.Timers().Cancel(rec.ActionID))

	report, err := f.engine.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Zero(t, report.Expired)
	assert.True(t, f.store.get(rec.ActionID).Active)

	f.clock.Advance(10*time.Minute + time.Second)
	report, err = f.engine.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, 1, report.Reversed)
	assert.False(t, f.store.get(rec.ActionID).Active)
	assert.Equal(t, "expired (sweep)", f.store.get(rec.ActionID).EndReason)
	assert.True(t, f.store.get(perm.ActionID).Active)
	assert.Equal(t, 1, f.platform.count("remove"))

	report, err = f.engine.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.Expired)
}

func TestSweepRejectsOverlappingRun(t *testing.T) {
	f := newFixture(t)
	f.store.put(activeRecord("100000000000000001", "user-1", model.KindMute, t0.Add(-time.Hour), time.Minute))
	f.platform.rmDelay = 200 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.engine.SweepOnce(context.Background())
	}()

	require.Eventually(t, func() bool {
		f.store.mu.Lock()
		defer f.store.mu.Unlock()
		return f.store.deactivate == 1
	}, time.Second, time.Millisecond)

	_, err := f.engine.SweepOnce(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	<-done
	_, err = f.engine.SweepOnce(context.Background())
	assert.NoError(t, err)
}

func TestSweepRacingTimerReversesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.engine.Issue(ctx, muteRequest("user-1", "10m"))
	require.NoError(t, err)
	f.clock.Advance(11 * time.Minute)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.engine.Timers().FireNow(rec.ActionID)
	}()
	go func() {
		defer wg.Done()
		_, err := f.engine.SweepOnce(ctx)
		assert.NoError(t, err)
	}()
	wg.Wait()

	assert.False(t, f.store.get(rec.ActionID).Active)
	assert.Equal(t, 1, f.platform.count("remove"))
}

func TestSweepCanceledContext(t *testing.T) {
	f := newFixture(t)
	f.store.put(activeRecord("100000000000000001", "user-1", model.KindMute, t0.Add(-time.Hour), time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.engine.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, f.store.get("100000000000000001").Active)
}
