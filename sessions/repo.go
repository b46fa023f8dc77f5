package sessions

// Fixed slot keys for the persisted session.
const (
	KeyAccess    = "sb_access"
	KeyRefresh   = "sb_refresh"
	KeyPrincipal = "sb_user"
)

// Keys lists every slot a session owns.
var Keys = []string{KeyAccess, KeyRefresh, KeyPrincipal}

// Repo persists opaque string slots for one profile.
type Repo interface {
	// Get returns the slot value and whether it was present
	Get(key string) (string, bool, error)

	// Put writes all values in one atomic step
	Put(values map[string]string) error

	// Delete removes the keys in one atomic step; missing keys are ignored
	Delete(keys ...string) error
}
