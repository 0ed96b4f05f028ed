package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/occ/internal/table"
	"github.com/viant/occ/internal/types"
)

func TestHandleStageStart_Idempotent_Overwrites(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	require.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))

	// Repeated StageStarted for a live stage discards the previous
	// subtable, including any grants already made within it.
	HandleStageStart(c, 5)
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 101),
		"re-announcing StageStarted must drop prior grants for that stage")
}

func TestHandleStageEnd_IdempotentOnMissingStage(t *testing.T) {
	c := table.New()
	HandleStageEnd(c, 7) // must not panic
	_, live := c[7]
	assert.False(t, live)
}

func TestHandleAskPermissionToCommit_StageGating(t *testing.T) {
	c := table.New()
	assert.False(t, HandleAskPermissionToCommit(c, 7, 0, 1), "ask against a non-live stage is denied")
}

func TestHandleAskPermissionToCommit_FirstWins(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 101), "second attempt for the same task is denied")
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 100), "re-asking with the winning attempt does not renew or re-grant")
}

func TestHandleTaskCompletion_SuccessPinsSlot(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	require.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 100, types.ReasonSuccess())
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 102), "success pins the slot until StageEnded")
}

func TestHandleTaskCompletion_OtherReleasesSlot(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	require.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 100, types.ReasonOther("ExecutorLostFailure"))
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 101), "a failed committer's slot becomes available")
}

func TestHandleTaskCompletion_CommitDeniedIsInert(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	require.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 101, types.ReasonCommitDenied(0, 9, 101))
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 102), "a denial never releases the real committer's lock")
}

func TestHandleTaskCompletion_UnrelatedAttemptCannotReleaseLock(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	require.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 77, types.ReasonOther("ExecutorLostFailure")) // never granted
	assert.Equal(t, types.AttemptId(100), c[5][9], "the real committer's lock is untouched")
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 101))
}

func TestHandleTaskCompletion_NotLiveIsNoop(t *testing.T) {
	c := table.New()
	HandleTaskCompletion(c, 5, 9, 100, types.ReasonOther("x")) // must not panic, no-op
	_, live := c[5]
	assert.False(t, live)
}

func TestHandleAskPermissionToCommit_AfterStageEndDenies(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 7)
	require.True(t, HandleAskPermissionToCommit(c, 7, 0, 1))
	HandleStageEnd(c, 7)
	assert.False(t, HandleAskPermissionToCommit(c, 7, 0, 2))
}

// Scenario 1: speculation race.
func TestScenario_SpeculationRace(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 101))
	HandleTaskCompletion(c, 5, 9, 100, types.ReasonSuccess())
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 102))
}

// Scenario 2: failed committer, later attempt succeeds.
func TestScenario_FailedCommitter(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 100, types.ReasonOther("lost"))
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 101))
	HandleTaskCompletion(c, 5, 9, 101, types.ReasonSuccess())
}

// Scenario 3: stale completion from a never-granted attempt.
func TestScenario_StaleCompletion(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 77, types.ReasonOther("lost")) // never granted
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 101))
}

// Scenario 4: stage gating before start, and after end.
func TestScenario_StageGating(t *testing.T) {
	c := table.New()
	assert.False(t, HandleAskPermissionToCommit(c, 7, 0, 1))
	HandleStageStart(c, 7)
	assert.True(t, HandleAskPermissionToCommit(c, 7, 0, 1))
	HandleStageEnd(c, 7)
	assert.False(t, HandleAskPermissionToCommit(c, 7, 0, 2))
}

// Scenario 5: denial is inert, lock still held by the real committer.
func TestScenario_DenialIsInert(t *testing.T) {
	c := table.New()
	HandleStageStart(c, 5)
	assert.True(t, HandleAskPermissionToCommit(c, 5, 9, 100))
	HandleTaskCompletion(c, 5, 9, 101, types.ReasonCommitDenied(0, 9, 101))
	assert.False(t, HandleAskPermissionToCommit(c, 5, 9, 102))
}

// Replaying an Ask twice must be idempotent at the table level.
func TestProperty_IdempotentRetries(t *testing.T) {
	first := table.New()
	HandleStageStart(first, 5)
	HandleAskPermissionToCommit(first, 5, 9, 100)
	HandleAskPermissionToCommit(first, 5, 9, 100) // replay

	second := table.New()
	HandleStageStart(second, 5)
	HandleAskPermissionToCommit(second, 5, 9, 100)

	assert.Equal(t, second, first)
}
