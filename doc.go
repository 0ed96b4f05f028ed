// Package occ implements the Output Commit Coordinator: a driver-resident
// authority that arbitrates which task attempt may commit its output for
// a given (stage, task), guaranteeing at most one successful committer
// while still letting a later attempt commit if the authorized one failed
// first.
//
// End-users construct a Service with New and drive it through the Client
// Facade:
//
//	svc := occ.New()
//	svc.StageStart(5)
//	granted, err := svc.CanCommit(ctx, 5, 9, 100)
//	svc.TaskCompleted(5, 9, 100, occ.ReasonSuccess())
//	svc.StageEnd(5)
//	svc.Stop(ctx)
//
// The coordinator does not perform the commit itself, does not detect
// stale writers on the storage side, does not persist state across driver
// restarts, and does not coordinate across independent driver processes.
package occ
