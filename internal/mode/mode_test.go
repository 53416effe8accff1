package mode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMissingFileIsDev(t *testing.T) {
	m, err := Resolve(filepath.Join(t.TempDir(), "robot_mode.txt"))
	require.NoError(t, err)
	assert.Equal(t, Dev, m)
	assert.False(t, m.IsComp())
}

func TestResolveTrimsContents(t *testing.T) {
	cases := map[string]Mode{
		"comp\n":     Comp,
		"  dev \n":   Dev,
		"\tcomp\r\n": Comp,
		"practice\n": Mode("practice"),
		"COMP":       Mode("COMP"),
		"":           Mode(""),
	}
	for contents, want := range cases {
		path := filepath.Join(t.TempDir(), "robot_mode.txt")
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

		got, err := Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, "contents %q", contents)
	}
}

func TestUnknownModeIsNotComp(t *testing.T) {
	m := Mode("practice")
	assert.False(t, m.IsComp())
	assert.False(t, m.Known())
	assert.True(t, Comp.Known())
	assert.True(t, Comp.IsComp())
	assert.Equal(t, "practice", m.String())
}

func TestResolveDirectoryIsError(t *testing.T) {
	_, err := Resolve(t.TempDir())
	require.Error(t, err)
}
