package model

// Version constants for the persisted schema and the engine.
const (
	// SchemaVersion is the store schema version (PRAGMA user_version).
	SchemaVersion = 1

	// EngineVersion is the find-my-fav engine version.
	EngineVersion = "0.1.0"
)
