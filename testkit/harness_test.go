package testkit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/occ"
	"github.com/viant/occ/testkit"
)

func TestHarness_OnlyOneSpeculativeAttemptCommits(t *testing.T) {
	svc := occ.New()
	ctx := context.Background()
	h := testkit.NewHarness(svc, testkit.NewManualClock(time.Unix(0, 0)), nil, nil)

	svc.StageStart(5)
	h.RunAttempt(ctx, 5, 9, 100, testkit.CommitAttempt("partition-9-part-a"))
	// RunAttempt gives no ordering between goroutines, so attempt 100 is let
	// finish before 101 starts; that makes 100 the one that asks first.
	h.WaitForAttempts()
	h.RunAttempt(ctx, 5, 9, 101, testkit.CommitAttempt("partition-9-part-b"))
	h.WaitForAttempts()

	committed := h.Output.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, occ.AttemptId(100), committed[0].Attempt)
}

func TestHarness_ManualClockTickFiresOnAdvance(t *testing.T) {
	clock := testkit.NewManualClock(time.Unix(0, 0))
	ticked := clock.Tick()

	done := make(chan struct{})
	go func() {
		<-ticked
		close(done)
	}()

	clock.Advance(time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick did not fire after Advance")
	}
	assert.Equal(t, time.Unix(1, 0), clock.Now())
}

func TestBatchBarrier_WaitsForEveryListener(t *testing.T) {
	barrier := testkit.NewBatchBarrier()
	barrier.Register(1, 3)

	for i := 0; i < 3; i++ {
		go barrier.Arrive(1)
	}

	done := make(chan struct{})
	go func() {
		barrier.WaitForBatchCompletion(1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("barrier did not release after all listeners arrived")
	}
}

func TestInputQueue_PushThenPop(t *testing.T) {
	q := testkit.NewInputQueue(4)
	q.Push("a", "b")

	ctx := context.Background()
	first, ok := q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, "a", first)

	second, ok := q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, "b", second)
}
