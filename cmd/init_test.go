package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
	"github.com/zate/ifsgen/testutil"
)

func TestSeedBuiltins(t *testing.T) {
	d := testutil.SetupTestDB(t)

	n, err := seedBuiltins(d)
	require.NoError(t, err)
	assert.Equal(t, len(preset.BuiltinNames()), n)

	records, err := d.ListPresets(db.ListOptions{Tag: "builtin"})
	require.NoError(t, err)
	assert.Len(t, records, n)

	// Second run adds nothing
	n, err = seedBuiltins(d)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOutputPresetFormat(t *testing.T) {
	old := format
	t.Cleanup(func() { format = old })

	format = "json"
	assert.Equal(t, "json", outputPresetFormat())
	format = "text"
	assert.Equal(t, "yaml", outputPresetFormat())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "01ARZ3ND", shortID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
	assert.Equal(t, "abc", shortID("abc"))
}
