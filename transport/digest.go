package transport

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/viant/occ/internal/dispatcher"
)

// digest fingerprints a wire envelope for log correlation only — it is not
// used for any security purpose. Reuses golang.org/x/crypto (already a
// teacher dependency, via its ssh subpackage) instead of adding a new
// module, per DESIGN.md.
func digest(raw dispatcher.RawMessage) string {
	data := fmt.Sprintf("%s:%d:%d:%d", raw.Type, raw.Stage, raw.Task, raw.Attempt)
	sum := blake2b.Sum256([]byte(data))
	return hex.EncodeToString(sum[:8])
}
