package dispatcher

import (
	"fmt"

	"github.com/viant/occ/internal/types"
)

// MessageKind tags one of the five wire message variants.
type MessageKind int

const (
	KindStageStarted MessageKind = iota
	KindStageEnded
	KindAskPermissionToCommit
	KindTaskCompleted
	KindStopCoordinator
)

func (k MessageKind) String() string {
	switch k {
	case KindStageStarted:
		return "StageStarted"
	case KindStageEnded:
		return "StageEnded"
	case KindAskPermissionToCommit:
		return "AskPermissionToCommit"
	case KindTaskCompleted:
		return "TaskCompleted"
	case KindStopCoordinator:
		return "StopCoordinator"
	default:
		return "Unknown"
	}
}

// Message is implemented by the five concrete wire variants. Matched
// exhaustively in Dispatcher.handle rather than through reflection.
type Message interface {
	Kind() MessageKind
}

// StageStarted notifies the coordinator that a stage has become live.
type StageStarted struct {
	Stage types.StageId `json:"stage"`
}

func (StageStarted) Kind() MessageKind { return KindStageStarted }

// StageEnded notifies the coordinator that a stage is no longer live.
type StageEnded struct {
	Stage types.StageId `json:"stage"`
}

func (StageEnded) Kind() MessageKind { return KindStageEnded }

// AskPermissionToCommit requests permission for (Stage, Task, Attempt) to
// commit. It is the only variant whose reply carries a decision;
// StopCoordinator is only acknowledged, and the other three variants are
// fire-and-forget.
type AskPermissionToCommit struct {
	Stage   types.StageId  `json:"stage"`
	Task    types.TaskId   `json:"task"`
	Attempt types.AttemptId `json:"attempt"`
}

func (AskPermissionToCommit) Kind() MessageKind { return KindAskPermissionToCommit }

// TaskCompleted reports that one attempt has finished, with Reason tagging
// how it finished.
type TaskCompleted struct {
	Stage   types.StageId      `json:"stage"`
	Task    types.TaskId       `json:"task"`
	Attempt types.AttemptId    `json:"attempt"`
	Reason  types.TaskEndReason `json:"reason"`
}

func (TaskCompleted) Kind() MessageKind { return KindTaskCompleted }

// StopCoordinator requests shutdown; it is acknowledged, unlike the other
// notifications.
type StopCoordinator struct{}

func (StopCoordinator) Kind() MessageKind { return KindStopCoordinator }

// RawMessage is the wire-level shape a Transport implementation decodes
// before handing a Message to the dispatcher. It exists so that a
// malformed message — an unrecognized Type — can be detected and logged
// at the transport boundary, rather than at the closed Go sum type used
// for in-process dispatch.
type RawMessage struct {
	Type    string             `json:"type"`
	Stage   types.StageId      `json:"stage,omitempty"`
	Task    types.TaskId       `json:"task,omitempty"`
	Attempt types.AttemptId    `json:"attempt,omitempty"`
	Reason  *types.TaskEndReason `json:"reason,omitempty"`
}

// ErrMalformedMessage is returned by Decode for an unrecognized Type tag.
// Callers log it at warn and drop the message; it must never crash the
// dispatcher.
type ErrMalformedMessage struct {
	Type string
}

func (e *ErrMalformedMessage) Error() string {
	return fmt.Sprintf("dispatcher: malformed message: unknown type %q", e.Type)
}

// Decode converts a RawMessage into its typed Message, or an
// *ErrMalformedMessage if Type does not match one of the five known
// variants.
func Decode(raw RawMessage) (Message, error) {
	switch raw.Type {
	case KindStageStarted.String():
		return StageStarted{Stage: raw.Stage}, nil
	case KindStageEnded.String():
		return StageEnded{Stage: raw.Stage}, nil
	case KindAskPermissionToCommit.String():
		return AskPermissionToCommit{Stage: raw.Stage, Task: raw.Task, Attempt: raw.Attempt}, nil
	case KindTaskCompleted.String():
		reason := types.ReasonOther("")
		if raw.Reason != nil {
			reason = *raw.Reason
		}
		return TaskCompleted{Stage: raw.Stage, Task: raw.Task, Attempt: raw.Attempt, Reason: reason}, nil
	case KindStopCoordinator.String():
		return StopCoordinator{}, nil
	default:
		return nil, &ErrMalformedMessage{Type: raw.Type}
	}
}

// Encode is the inverse of Decode, used by a Transport implementation to
// put a Message on the wire.
func Encode(msg Message) RawMessage {
	switch m := msg.(type) {
	case StageStarted:
		return RawMessage{Type: m.Kind().String(), Stage: m.Stage}
	case StageEnded:
		return RawMessage{Type: m.Kind().String(), Stage: m.Stage}
	case AskPermissionToCommit:
		return RawMessage{Type: m.Kind().String(), Stage: m.Stage, Task: m.Task, Attempt: m.Attempt}
	case TaskCompleted:
		reason := m.Reason
		return RawMessage{Type: m.Kind().String(), Stage: m.Stage, Task: m.Task, Attempt: m.Attempt, Reason: &reason}
	case StopCoordinator:
		return RawMessage{Type: m.Kind().String()}
	default:
		return RawMessage{Type: "Unknown"}
	}
}
