package occ

import "github.com/viant/occ/internal/types"

// StageId, TaskId and AttemptId are re-exported as aliases of the internal
// types package so that a caller of this facade never needs to import an
// internal package, mirroring fluxor's root package aliasing of
// runtime/execution types in option.go (e.g. execution2.Execution).
type (
	StageId   = types.StageId
	TaskId    = types.TaskId
	AttemptId = types.AttemptId

	TaskEndKind   = types.TaskEndKind
	TaskEndReason = types.TaskEndReason
)

const (
	Success      = types.Success
	CommitDenied = types.CommitDenied
	Other        = types.Other
)

// ReasonSuccess builds the Success variant of TaskEndReason.
func ReasonSuccess() TaskEndReason { return types.ReasonSuccess() }

// ReasonCommitDenied builds the CommitDenied variant of TaskEndReason.
func ReasonCommitDenied(job, split int, attempt AttemptId) TaskEndReason {
	return types.ReasonCommitDenied(job, split, attempt)
}

// ReasonOther builds the catch-all Other variant of TaskEndReason.
func ReasonOther(descriptor string) TaskEndReason { return types.ReasonOther(descriptor) }
