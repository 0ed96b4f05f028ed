package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/occ/internal/types"
)

func TestDispatcher_SpeculationRace(t *testing.T) {
	d := New()
	defer d.Stop(context.Background())

	require.True(t, d.Notify(StageStarted{Stage: 5}))

	ctx := context.Background()
	granted, err := d.Ask(ctx, 5, 9, 100)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = d.Ask(ctx, 5, 9, 101)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestDispatcher_ConcurrentAsksExactlyOneWins(t *testing.T) {
	d := New()
	defer d.Stop(context.Background())

	require.True(t, d.Notify(StageStarted{Stage: 1}))

	const n = 20
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			granted, err := d.Ask(context.Background(), 1, 0, types.AttemptId(i))
			require.NoError(t, err)
			results[i] = granted
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent ask must be granted")
}

func TestDispatcher_StopAcksThenDropsFurtherSends(t *testing.T) {
	d := New()
	require.True(t, d.Notify(StageStarted{Stage: 5}))

	ok := d.Stop(context.Background())
	assert.True(t, ok)
	assert.True(t, d.Stopped())

	assert.False(t, d.Notify(StageEnded{Stage: 5}), "sends after Stop are dropped silently")

	granted, err := d.Ask(context.Background(), 5, 9, 100)
	require.NoError(t, err)
	assert.False(t, granted, "CanCommit after Stop is always denied, never an error")
}

func TestDispatcher_AskTimesOutWithoutHanging(t *testing.T) {
	d := New()
	defer d.Stop(context.Background())

	// A send-then-never-reply scenario is simulated by cancelling the
	// context before the dispatcher has any chance to reply: the call must
	// return promptly, either with the (still valid) reply or with the
	// context error, never by hanging.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		_, _ = d.Ask(ctx, 5, 9, 100)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Ask did not return promptly after context cancellation")
	}
}
