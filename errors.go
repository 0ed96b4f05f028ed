package occ

import "github.com/viant/occ/transport"

// ErrCoordinatorUnreachable is returned by CanCommit when the transport
// exhausted every retry attempt without producing a reply. Callers MUST
// treat it as a denial and must not commit. It is the same
// sentinel transport.AskWithRetry produces, re-exported here so callers of
// the facade never need to import the transport package directly.
var ErrCoordinatorUnreachable = transport.ErrCoordinatorUnreachable
