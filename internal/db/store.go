package db

import "database/sql"

// Store is the interface for all preset storage. Both SQLite (local) and
// PostgreSQL (server) backends implement it.
type Store interface {
	// Close closes the database connection.
	Close() error

	// --- Preset operations ---

	CreatePreset(input CreatePresetInput) (*Record, error)
	GetPreset(id string) (*Record, error)
	GetPresetByName(name string) (*Record, error)
	UpdatePreset(id string, input UpdatePresetInput) (*Record, error)
	DeletePreset(id string) error
	ListPresets(opts ListOptions) ([]*Record, error)
	ResolveID(prefix string) (string, error)

	// --- Tag operations ---

	AddTag(presetID, tag string) error
	RemoveTag(presetID, tag string) error
	GetTags(presetID string) ([]string, error)
	ListAllTags() ([]string, error)

	// --- Reporting ---

	Stats() (*Stats, error)

	// --- Raw SQL access ---

	QueryRow(query string, args ...interface{}) *sql.Row
}
