package transport

import (
	"context"
	"log"
	"sync"

	"github.com/viant/occ/internal/dispatcher"
	"github.com/viant/occ/internal/types"
)

// Local is an in-memory Transport that round-trips an AskPermissionToCommit
// through the wire encode/decode path (dispatcher.Encode/Decode) before
// forwarding it to a local *dispatcher.Dispatcher. It plays the role a
// networked transport would play for a driver-resident coordinator talking
// to in-process task code, and is what the Client Facade uses by default.
type Local struct {
	d *dispatcher.Dispatcher

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLocal wraps d.
func NewLocal(d *dispatcher.Dispatcher) *Local {
	return &Local{d: d, seen: make(map[string]struct{})}
}

// Ask implements Transport.
func (l *Local) Ask(ctx context.Context, stage types.StageId, task types.TaskId, attempt types.AttemptId) (bool, error) {
	raw := dispatcher.Encode(dispatcher.AskPermissionToCommit{Stage: stage, Task: task, Attempt: attempt})

	fp := digest(raw)
	l.mu.Lock()
	_, duplicate := l.seen[fp]
	l.seen[fp] = struct{}{}
	l.mu.Unlock()
	if duplicate {
		log.Printf("DEBUG: transport: retried ask fingerprint=%s observed again; safe, the kernel is idempotent under retry", fp)
	}

	msg, err := dispatcher.Decode(raw)
	if err != nil {
		log.Printf("WARN: transport: %v", err)
		return false, err
	}

	ask := msg.(dispatcher.AskPermissionToCommit)
	return l.d.Ask(ctx, ask.Stage, ask.Task, ask.Attempt)
}

var _ Transport = (*Local)(nil)
