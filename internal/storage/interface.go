package storage

// Provider persists the whole application state at once. Callers read a
// Snapshot at startup and write one back after each change.
type Provider interface {
	Init() error
	Load() error
	Close() error

	ReadSnapshot() (Snapshot, error)
	WriteSnapshot(Snapshot) error

	// GetConfigPath identifies the backing store without leaking secrets.
	GetConfigPath() string
}
