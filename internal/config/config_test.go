package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryTuning(t *testing.T) {
	cfg := &Config{MaxRetries: 7, BaseDelay: 250, MaxDelay: 10000}

	assert.Equal(t, 7, cfg.RetryCeiling())
	assert.Equal(t, 250*time.Millisecond, cfg.BaseDelayDuration())
	assert.Equal(t, 10*time.Second, cfg.MaxDelayDuration())

	// Zero values mean "use queue defaults"
	assert.Zero(t, (&Config{}).RetryCeiling())
}

func TestInitializeAndLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Initialize("http://localhost:8730", "groceries", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Path(), DatabaseFile), cfg.DatabasePath())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8730", loaded.ServerURL)
	assert.Equal(t, "groceries", loaded.List)
	assert.Equal(t, "s3cret", loaded.Token)

	// Re-initializing an existing directory fails
	_, err = Initialize("http://localhost:8730", "groceries", "")
	assert.Error(t, err)
}

func TestFindRoot_WalksUp(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	_, err := Initialize("http://localhost:8730", "groceries", "")
	require.NoError(t, err)

	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	t.Chdir(sub)

	found, err := FindRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ListqDir), found)
}
