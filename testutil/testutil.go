package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
)

// SetupTestDB creates a test database and returns it.
func SetupTestDB(t *testing.T) *db.SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// NewPreset returns a valid preset with n half-scale transforms.
func NewPreset(name string, n, iterations int) preset.Preset {
	ts := make([]preset.Transform, n)
	for i := range ts {
		ts[i] = preset.Transform{
			Translate: [3]float64{float64(i) / 2, 0, 0},
			Scale:     [3]float64{0.5, 0.5, 0.5},
			Weight:    1,
		}
	}
	return preset.Preset{Name: name, Transforms: ts, Iterations: iterations}
}

// Ptr returns a pointer to the value.
func Ptr[T any](v T) *T {
	return &v
}
