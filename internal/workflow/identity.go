package workflow

import (
	"github.com/google/uuid"

	"github.com/avafanasiev/copybara/internal/destination"
)

// identityNamespace is a fixed namespace UUID used to derive stable,
// content-addressed workflow identities (SUPPLEMENTED FEATURES item 2 in
// SPEC_FULL.md): the same (mode, ref, origin label) always yields the same
// identity, letting a destination deduplicate retries of the same run.
var identityNamespace = uuid.MustParse("5f2f1d1a-2f2e-4a6a-9f0a-2f7c1c1e9b6d")

// NewIdentity derives a stable workflow-identity fingerprint from the
// workflow mode, the resolved origin reference, and the origin's label
// name.
func NewIdentity(mode Mode, resolvedRefCanonicalForm string, originLabelName string) destination.Identity {
	seed := string(mode) + "\x00" + resolvedRefCanonicalForm + "\x00" + originLabelName
	return destination.Identity(uuid.NewSHA1(identityNamespace, []byte(seed)).String())
}
