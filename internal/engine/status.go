package engine

// SyncStatus is the engine's connectivity state as last observed.
type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusOnline  SyncStatus = "online"
	StatusOffline SyncStatus = "offline"
)

// User-facing sync error messages
const (
	MsgHydrationFailed = "Server sync unavailable. Using local storage only."
	MsgMirrorFailed    = "Server sync unavailable. Changes are saved locally."
	MsgIdentityFailed  = "Could not initialize server sync."
)

// Snapshot is a point-in-time view of the engine state.
type Snapshot struct {
	// Loaded is true once the local snapshot has been read.
	Loaded bool
	// Hydrated is true once the remote fetch finished, successfully or not.
	Hydrated bool
	Status   SyncStatus
	// Error is empty unless Status is offline.
	Error string
	// Version increases on every change to the favorites collection.
	Version uint64
}
