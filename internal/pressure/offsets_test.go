package pressure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOffsets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offsets.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOffsets(t *testing.T) {
	t.Parallel()

	t.Run("values with comments and blanks", func(t *testing.T) {
		t.Parallel()
		path := writeOffsets(t, "# rest pressures\n0.5\n\n-0.25\n1.0\n")
		offsets, err := LoadOffsets(path)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, -0.25, 1.0}, offsets)
	})

	t.Run("non-numeric line", func(t *testing.T) {
		t.Parallel()
		path := writeOffsets(t, "0.5\nbogus\n")
		_, err := LoadOffsets(path)
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		path := writeOffsets(t, "# nothing here\n")
		_, err := LoadOffsets(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadOffsets(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	command := []float64{1, 2, 3}
	got := Apply(command, []float64{0.5, -0.5, 0})
	assert.Equal(t, []float64{1.5, 1.5, 3}, got)
	// input untouched
	assert.Equal(t, []float64{1, 2, 3}, command)
}
