package occ

import (
	"context"

	"github.com/viant/occ/internal/dispatcher"
	"github.com/viant/occ/transport"
)

// Service is the object invoked in-process by the scheduler, and — via a
// Transport — by remote task attempts asking for commit permission.
type Service struct {
	config    *Config
	dispatch  *dispatcher.Dispatcher
	transport transport.Transport
}

// New constructs a Service and starts its dispatcher goroutine. Options
// are applied after defaults, mirroring fluxor.Service.init.
func New(options ...Option) *Service {
	s := &Service{
		config:   DefaultConfig(),
		dispatch: dispatcher.New(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.transport == nil {
		s.transport = transport.NewLocal(s.dispatch)
	}
	return s
}

// StageStart notifies the coordinator that stage has become live. It is
// the scheduler's responsibility to send this before any Ask or
// TaskCompleted for the stage.
func (s *Service) StageStart(stage StageId) {
	s.dispatch.Notify(dispatcher.StageStarted{Stage: stage})
}

// StageEnd notifies the coordinator that stage is no longer live,
// destroying its StageCommitSet.
func (s *Service) StageEnd(stage StageId) {
	s.dispatch.Notify(dispatcher.StageEnded{Stage: stage})
}

// TaskCompleted reports that one attempt finished, with reason tagging how.
func (s *Service) TaskCompleted(stage StageId, task TaskId, attempt AttemptId, reason TaskEndReason) {
	s.dispatch.Notify(dispatcher.TaskCompleted{Stage: stage, Task: task, Attempt: attempt, Reason: reason})
}

// CanCommit asks permission for (stage, task, attempt) to commit, through
// the configured Transport with bounded retries and an overall per-attempt
// timeout. If every attempt exhausts without a reply it
// returns ErrCoordinatorUnreachable; callers MUST treat that, like a false
// reply, as denial and must not commit.
func (s *Service) CanCommit(ctx context.Context, stage StageId, task TaskId, attempt AttemptId) (bool, error) {
	return transport.AskWithRetry(ctx, s.transport, stage, task, attempt, s.config.MaxAttempts, s.config.RetryInterval, s.config.AskTimeout)
}

// Stop drains the coordinator's state and detaches its dispatcher. Safe to
// call more than once. After Stop, CanCommit always returns (false, nil)
// rather than blocking or erroring.
func (s *Service) Stop(ctx context.Context) bool {
	return s.dispatch.Stop(ctx)
}

// Stopped reports whether Stop has already completed.
func (s *Service) Stopped() bool {
	return s.dispatch.Stopped()
}
