package testkit

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/viant/occ"
)

// InputQueue feeds records to simulated task attempts, grounded on
// fluxor's service/messaging/memory.Queue buffered-channel shape.
type InputQueue struct {
	records chan string
}

// NewInputQueue returns a queue buffered to hold size pending records.
func NewInputQueue(size int) *InputQueue {
	return &InputQueue{records: make(chan string, size)}
}

// Push enqueues records for consumption, blocking once the buffer is full.
func (q *InputQueue) Push(records ...string) {
	for _, r := range records {
		q.records <- r
	}
}

// Pop consumes one record, or returns ok=false if ctx is done first.
func (q *InputQueue) Pop(ctx context.Context) (record string, ok bool) {
	select {
	case r := <-q.records:
		return r, true
	case <-ctx.Done():
		return "", false
	}
}

// CommittedOutput is one successfully committed attempt's output, recorded
// by OutputCollector.
type CommittedOutput struct {
	Stage   occ.StageId
	Task    occ.TaskId
	Attempt occ.AttemptId
	Payload string
}

// OutputCollector records the outputs of attempts that were granted commit
// permission. If a durableRoot is configured it also writes each commit as
// a marker file through afs, mirroring service/dao/process/fs.Service's
// upload-on-save pattern — useful for a test that wants to assert against
// actual files rather than only in-memory state.
type OutputCollector struct {
	mu          sync.Mutex
	committed   []CommittedOutput
	fs          afs.Service
	durableRoot string
}

// NewOutputCollector returns a collector that only tracks commits
// in-memory.
func NewOutputCollector() *OutputCollector {
	return &OutputCollector{}
}

// NewDurableOutputCollector returns a collector that, in addition to
// tracking commits in-memory, writes one marker file per commit under
// durableRoot.
func NewDurableOutputCollector(durableRoot string) *OutputCollector {
	return &OutputCollector{fs: afs.New(), durableRoot: durableRoot}
}

// Commit records a successful commit. It is the caller's responsibility to
// have already confirmed permission via Service.CanCommit.
func (o *OutputCollector) Commit(ctx context.Context, stage occ.StageId, task occ.TaskId, attempt occ.AttemptId, payload string) error {
	o.mu.Lock()
	o.committed = append(o.committed, CommittedOutput{Stage: stage, Task: task, Attempt: attempt, Payload: payload})
	fs, root := o.fs, o.durableRoot
	o.mu.Unlock()

	if fs == nil {
		return nil
	}
	markerPath := path.Join(root, fmt.Sprintf("stage-%d-task-%d-attempt-%d.marker", stage, task, attempt))
	if err := fs.Upload(ctx, markerPath, file.DefaultFileOsMode, bytes.NewReader([]byte(payload))); err != nil {
		return fmt.Errorf("testkit: failed to write durable marker %s: %w", markerPath, err)
	}
	return nil
}

// Committed returns a snapshot of every commit recorded so far.
func (o *OutputCollector) Committed() []CommittedOutput {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]CommittedOutput, len(o.committed))
	copy(out, o.committed)
	return out
}
