package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// project lays out base/survey/.lintas, base/survey/2023/raw and base/empty.
func project(t *testing.T) (survey, raw, empty string) {
	t.Helper()
	base := t.TempDir()
	survey = filepath.Join(base, "survey")
	raw = filepath.Join(survey, "2023", "raw")
	empty = filepath.Join(base, "empty")
	require.NoError(t, os.MkdirAll(raw, 0755))
	require.NoError(t, os.MkdirAll(empty, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(survey, StoreDirName), 0755))
	return survey, raw, empty
}

func TestFindRoot(t *testing.T) {
	survey, raw, empty := project(t)

	got, err := FindRoot(survey)
	require.NoError(t, err)
	assert.Equal(t, survey, got)

	got, err = FindRoot(raw)
	require.NoError(t, err)
	assert.Equal(t, survey, got)

	_, err = FindRoot(empty)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestProjectStorePath(t *testing.T) {
	survey, raw, empty := project(t)

	path, ok := ProjectStorePath(raw)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(survey, StoreDirName), path)

	_, ok = ProjectStorePath(empty)
	assert.False(t, ok)
}

func TestLoadConfig_ProjectStoreWins(t *testing.T) {
	survey, raw, empty := project(t)

	t.Run("Found above the working directory", func(t *testing.T) {
		t.Chdir(raw)
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(survey, StoreDirName), cfg.Store.Path)
	})

	t.Run("Explicit path still wins", func(t *testing.T) {
		t.Chdir(raw)
		t.Setenv("LINTAS_STORE_PATH", filepath.Join(empty, "db"))
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(empty, "db"), cfg.Store.Path)
	})

	t.Run("XDG default otherwise", func(t *testing.T) {
		t.Chdir(empty)
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultStorePath(cfg.Store.Name), cfg.Store.Path)
	})
}
