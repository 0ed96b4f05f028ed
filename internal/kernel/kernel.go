// Package kernel implements the Decision Kernel: the pure functions that
// consume the Committers Table plus one event and produce the next table
// state (by mutating the table in place, since it is owned exclusively by
// the caller's single goroutine) and, for AskPermissionToCommit, a boolean
// reply. None of these functions block, suspend, or return an error — they
// are total transformations over the table.
package kernel

import (
	"github.com/viant/occ/internal/table"
	"github.com/viant/occ/internal/types"
)

// HandleStageStart inserts an empty StageCommitSet under stage.
//
// Repeating StageStarted for a stage that is already live replaces its
// subtable with a new empty one rather than leaving the existing one in
// place. This is deliberate: the driver considers the prior stage attempt
// abandoned once it reannounces the stage start. See DESIGN.md; this
// choice is pinned by TestHandleStageStart_Idempotent_Overwrites.
func HandleStageStart(c table.CommittersByStage, stage types.StageId) {
	c[stage] = table.StageCommitSet{}
}

// HandleStageEnd removes stage from the table, discarding its subtable.
// Idempotent on a stage that is not live.
func HandleStageEnd(c table.CommittersByStage, stage types.StageId) {
	delete(c, stage)
}

// HandleAskPermissionToCommit grants or denies permission to commit.
//
// A stage that is not live always denies. Within a live stage, the first
// attempt to ask for a given task wins the slot regardless of whether a
// later ask names the same attempt — re-asking never renews or re-grants
// the lock.
func HandleAskPermissionToCommit(c table.CommittersByStage, stage types.StageId, task types.TaskId, attempt types.AttemptId) bool {
	set, live := c[stage]
	if !live {
		return false
	}
	if _, held := set[task]; held {
		return false
	}
	set[task] = attempt
	return true
}

// HandleTaskCompletion applies the completion rules for a finished attempt.
//
// A stage that is not live makes this a tolerated no-op. Success pins the
// slot until StageEnded — the authorized committer's success must not be
// undone by a later duplicate ask. CommitDenied never mutates the table —
// the denial was issued by this coordinator and must not release a lock
// held by the real committer. Anything else (executor lost, exception,
// killed, ...) releases the slot only if the reporting attempt is the one
// actually holding it; an unrelated, never-granted attempt failing must
// not disturb the real committer's lock.
func HandleTaskCompletion(c table.CommittersByStage, stage types.StageId, task types.TaskId, attempt types.AttemptId, reason types.TaskEndReason) {
	set, live := c[stage]
	if !live {
		return
	}
	switch reason.Kind {
	case types.Success, types.CommitDenied:
		return
	default:
		if held, ok := set[task]; ok && held == attempt {
			delete(set, task)
		}
	}
}
