// Package dispatcher implements the Message Dispatcher: a single-consumer
// mailbox goroutine that serializes every mutation of the Committers Table
// and every reply to AskPermissionToCommit through the Decision Kernel.
// Grounded on service/processor.Service's one-goroutine-per-worker
// consume loop and service/event.Listener's Start/Stop shape in the
// teacher repository; see DESIGN.md.
package dispatcher

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/viant/occ/internal/kernel"
	"github.com/viant/occ/internal/table"
	"github.com/viant/occ/internal/types"
)

var tracer = otel.Tracer("github.com/viant/occ/internal/dispatcher")

// envelope pairs one Message with the reply channel the dispatcher must
// answer on, captured by the sender before handoff. reply is nil for
// fire-and-forget notifications.
type envelope struct {
	id    string
	msg   Message
	reply chan bool
}

// Dispatcher owns the Committers Table exclusively; no other component may
// read or mutate it.
type Dispatcher struct {
	mailbox chan envelope
	stopped chan struct{}
	done    chan struct{}
	table   table.CommittersByStage
}

// New starts the dispatcher's consumer goroutine and returns a handle to
// it. The mailbox is buffered so that fire-and-forget notifications from a
// fast producer never block on the consumer without good reason, mirroring
// service/messaging/memory.Queue's buffered channel.
func New() *Dispatcher {
	d := &Dispatcher{
		mailbox: make(chan envelope, 256),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
		table:   table.New(),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for env := range d.mailbox {
		if d.handle(env) {
			return
		}
	}
}

// handle applies one event to the kernel/table and returns true if the
// dispatcher must stop consuming further messages. Each event gets its own
// span, tagged with the fields that matter for that message kind rather
// than a generic attribute bag, since every span this dispatcher ever
// starts is internal (there is no server/client/producer/consumer
// boundary to distinguish).
func (d *Dispatcher) handle(env envelope) (stop bool) {
	_, span := tracer.Start(context.Background(), "dispatcher.handle "+env.msg.Kind().String())
	span.SetAttributes(attribute.String("message.id", env.id))
	defer span.End()

	switch m := env.msg.(type) {
	case StageStarted:
		span.SetAttributes(attribute.Int64("stage", int64(m.Stage)))
		kernel.HandleStageStart(d.table, m.Stage)
	case StageEnded:
		span.SetAttributes(attribute.Int64("stage", int64(m.Stage)))
		kernel.HandleStageEnd(d.table, m.Stage)
	case AskPermissionToCommit:
		span.SetAttributes(
			attribute.Int64("stage", int64(m.Stage)),
			attribute.Int64("task", int64(m.Task)),
			attribute.Int64("attempt", int64(m.Attempt)),
		)
		if _, live := d.table[m.Stage]; !live {
			log.Printf("DEBUG: dispatcher: AskPermissionToCommit for non-live stage=%d task=%d attempt=%d (scheduler contract violation, tolerated as denial)", m.Stage, m.Task, m.Attempt)
		}
		granted := kernel.HandleAskPermissionToCommit(d.table, m.Stage, m.Task, m.Attempt)
		span.SetAttributes(attribute.Bool("ask.granted", granted))
		if env.reply != nil {
			env.reply <- granted
		}
	case TaskCompleted:
		span.SetAttributes(
			attribute.Int64("stage", int64(m.Stage)),
			attribute.Int64("task", int64(m.Task)),
			attribute.Int64("attempt", int64(m.Attempt)),
			attribute.String("reason.kind", m.Reason.Kind.String()),
		)
		if _, live := d.table[m.Stage]; !live {
			log.Printf("DEBUG: dispatcher: TaskCompleted for non-live stage=%d task=%d attempt=%d (scheduler contract violation, tolerated as no-op)", m.Stage, m.Task, m.Attempt)
		}
		kernel.HandleTaskCompletion(d.table, m.Stage, m.Task, m.Attempt, m.Reason)
	case StopCoordinator:
		close(d.stopped)
		d.table = table.New()
		if env.reply != nil {
			env.reply <- true
		}
		return true
	default:
		log.Printf("WARN: dispatcher: dropping message of unhandled kind %v", env.msg.Kind())
	}
	return false
}

// Notify enqueues a fire-and-forget message (StageStarted, StageEnded,
// TaskCompleted). It returns false without blocking if the dispatcher has
// already stopped.
func (d *Dispatcher) Notify(msg Message) bool {
	select {
	case <-d.stopped:
		return false
	default:
	}
	select {
	case d.mailbox <- envelope{id: uuid.New().String(), msg: msg}:
		return true
	case <-d.stopped:
		return false
	}
}

// Ask enqueues an AskPermissionToCommit and blocks for the dispatcher's
// reply, or until ctx is done. It returns (false, nil) — not an error — if
// the dispatcher has already stopped: a denial is always safe, even after
// shutdown.
func (d *Dispatcher) Ask(ctx context.Context, stage types.StageId, task types.TaskId, attempt types.AttemptId) (bool, error) {
	select {
	case <-d.stopped:
		return false, nil
	default:
	}

	reply := make(chan bool, 1)
	env := envelope{id: uuid.New().String(), msg: AskPermissionToCommit{Stage: stage, Task: task, Attempt: attempt}, reply: reply}

	select {
	case d.mailbox <- env:
	case <-d.stopped:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case granted := <-reply:
		return granted, nil
	case <-ctx.Done():
		// The reply, if it later arrives, is discarded; safe because the
		// table mutation it caused is idempotent under retry.
		return false, ctx.Err()
	}
}

// Stop requests shutdown and blocks until the dispatcher has acknowledged
// it, or ctx is done. Safe to call more than once.
func (d *Dispatcher) Stop(ctx context.Context) bool {
	select {
	case <-d.stopped:
		return true
	default:
	}

	ack := make(chan bool, 1)
	env := envelope{id: uuid.New().String(), msg: StopCoordinator{}, reply: ack}

	select {
	case d.mailbox <- env:
	case <-d.stopped:
		return true
	case <-ctx.Done():
		return false
	}

	select {
	case <-ack:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stopped reports whether Stop has already been acknowledged.
func (d *Dispatcher) Stopped() bool {
	select {
	case <-d.stopped:
		return true
	default:
		return false
	}
}
