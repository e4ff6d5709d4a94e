package directory

import "context"

// ClientInterfaceID is this module's stable clienthub.InterfaceID. Other
// modules resolving Reader must reference this constant rather than
// hardcoding the string literal, so a rename here stays compiler-checked
// end to end (spec.md §9 — the two sides of a clienthub interface must
// agree on the same identifier).
const ClientInterfaceID = "hyperspot.directory.Reader"

// Reader is the client interface this module publishes: read-only access to
// the user directory for modules (e.g. modules/backup) that need to look
// users up without importing the storage layer directly.
type Reader interface {
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
}
