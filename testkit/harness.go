package testkit

import (
	"context"
	"sync"

	"github.com/viant/occ"
)

// AttemptFunc simulates one task attempt: it asks the coordinator for
// commit permission and, if granted, commits through the OutputCollector.
// It returns the reason to report back to the coordinator via
// TaskCompleted.
type AttemptFunc func(ctx context.Context, h *Harness, stage occ.StageId, task occ.TaskId, attempt occ.AttemptId) occ.TaskEndReason

// Harness wires a manual clock, an input queue and an output collector to
// an occ.Service, grounded on fluxor's service.Service/service_test.go
// wiring of a runtime to in-memory dao/messaging fakes for deterministic
// tests. One goroutine is spawned per RunAttempt call, mirroring
// service/processor's one-goroutine-per-worker shape.
type Harness struct {
	Service *occ.Service
	Clock   *ManualClock
	Input   *InputQueue
	Output  *OutputCollector

	wg sync.WaitGroup
}

// NewHarness builds a Harness around svc, the supplied clock, and the
// supplied input/output. A nil input or output is replaced with a
// reasonably sized default; the clock is stored as given.
func NewHarness(svc *occ.Service, clock *ManualClock, input *InputQueue, output *OutputCollector) *Harness {
	if input == nil {
		input = NewInputQueue(64)
	}
	if output == nil {
		output = NewOutputCollector()
	}
	return &Harness{Service: svc, Clock: clock, Input: input, Output: output}
}

// RunAttempt launches one simulated task attempt in its own goroutine,
// calling fn to decide its outcome and reporting the outcome back to the
// coordinator via TaskCompleted.
func (h *Harness) RunAttempt(ctx context.Context, stage occ.StageId, task occ.TaskId, attempt occ.AttemptId, fn AttemptFunc) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		reason := fn(ctx, h, stage, task, attempt)
		h.Service.TaskCompleted(stage, task, attempt, reason)
	}()
}

// WaitForAttempts blocks until every RunAttempt goroutine launched so far
// has returned.
func (h *Harness) WaitForAttempts() {
	h.wg.Wait()
}

// CommitAttempt is the AttemptFunc a speculative-execution test typically
// wants: ask for permission, commit the payload if granted, and report
// Success or CommitDenied accordingly.
func CommitAttempt(payload string) AttemptFunc {
	return func(ctx context.Context, h *Harness, stage occ.StageId, task occ.TaskId, attempt occ.AttemptId) occ.TaskEndReason {
		granted, err := h.Service.CanCommit(ctx, stage, task, attempt)
		if err != nil || !granted {
			return occ.ReasonCommitDenied(int(stage), int(task), attempt)
		}
		if err := h.Output.Commit(ctx, stage, task, attempt, payload); err != nil {
			return occ.ReasonOther(err.Error())
		}
		return occ.ReasonSuccess()
	}
}
