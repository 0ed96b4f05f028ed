// Package table implements the Committers Table: an in-memory, two-level
// mapping stage -> (task -> authorized attempt). The table carries no
// synchronization of its own — it is owned exclusively by the dispatcher
// goroutine and every mutation happens from that single goroutine, so a
// plain Go map is the correct (and only correct) representation; see
// DESIGN.md for why a mutex or concurrent map would be the wrong tool here.
package table

import "github.com/viant/occ/internal/types"

// StageCommitSet holds, for each task of one live stage, the currently
// authorized committing attempt. Absence of a task in the set means no
// attempt has yet been granted permission for that task.
type StageCommitSet map[types.TaskId]types.AttemptId

// CommittersByStage is the top-level table. Absence of a stage means the
// stage is not live: any permission request for it must be denied and any
// TaskCompleted event for it is a no-op.
type CommittersByStage map[types.StageId]StageCommitSet

// New returns an empty table, as used at dispatcher startup and again
// after Stop, which clears every subtable.
func New() CommittersByStage {
	return make(CommittersByStage)
}
