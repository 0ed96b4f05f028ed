// Package transport implements the Transport Shim: the abstraction over
// which AskPermissionToCommit is sent and a boolean reply awaited, with
// bounded retries and an overall per-attempt timeout. The DAG scheduler,
// the task runtime, and the real network transport are all external
// collaborators — this package only defines the narrow interface the
// coordinator needs from them, plus a retry helper
// and an in-memory implementation good enough for a single driver process.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/occ/internal/types"
)

// ErrCoordinatorUnreachable is returned by AskWithRetry once every attempt
// has failed to produce a reply. Callers MUST treat it as a denial and
// must not commit.
var ErrCoordinatorUnreachable = errors.New("occ: coordinator unreachable")

// Transport sends one AskPermissionToCommit and waits for its boolean
// reply, bounded by ctx. A single call corresponds to one physical send
// attempt; retrying across attempts is AskWithRetry's job, not the
// Transport implementation's.
type Transport interface {
	Ask(ctx context.Context, stage types.StageId, task types.TaskId, attempt types.AttemptId) (bool, error)
}

// AskWithRetry sends up to maxAttempts requests through tr, spaced by
// retryInterval, each individually bounded by timeout. The first
// successful reply is returned verbatim. If every attempt fails to
// produce a reply, it returns an error wrapping ErrCoordinatorUnreachable
// whose message includes the text of the last error observed.
func AskWithRetry(ctx context.Context, tr Transport, stage types.StageId, task types.TaskId, attempt types.AttemptId, maxAttempts int, retryInterval, timeout time.Duration) (bool, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		granted, err := tr.Ask(attemptCtx, stage, task, attempt)
		cancel()
		if err == nil {
			return granted, nil
		}
		lastErr = err

		if i == maxAttempts-1 {
			break
		}
		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return false, fmt.Errorf("%w: %d attempts exhausted, last error: %v", ErrCoordinatorUnreachable, maxAttempts, lastErr)
}
