package domain

// Meeting is the metadata the relay needs about a session: which identity
// gets the host fast-path. Persistence lives in the store, not here.
type Meeting struct {
	ID     string
	HostID string
}
