package domain

// RemoteHandle is the opaque identifier the remote service assigns to an
// entity. Handles are only ever issued by the remote side; local code stores
// and echoes them but never fabricates one.
type RemoteHandle struct {
	ID string
}

// IsZero returns true if the handle does not reference a remote entity.
func (h RemoteHandle) IsZero() bool {
	return h.ID == ""
}
