package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOALFORGE_CONFIG", "")
	t.Setenv("GOALFORGE_DEVICE_STORE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 14*time.Minute, cfg.MonitorInterval)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DeviceStoreFile, cfg.DeviceStore)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "goalforge.yaml")
	content := []byte("api_url: https://goals.example.com\nprobe_interval: 2s\ndevice_store: sqlite\ndata_dir: " + dir + "\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("GOALFORGE_CONFIG", path)
	t.Setenv("GOALFORGE_PROBE_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://goals.example.com", cfg.APIBaseURL)
	assert.Equal(t, time.Second, cfg.ProbeInterval)
	assert.Equal(t, DeviceStoreSQLite, cfg.DeviceStore)
	assert.Equal(t, filepath.Join(dir, "goalforge.db"), cfg.SQLitePath)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GOALFORGE_CONFIG", "")

	t.Setenv("GOALFORGE_MONITOR_INTERVAL", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("GOALFORGE_MONITOR_INTERVAL", "")
	t.Setenv("GOALFORGE_DEVICE_STORE", "redis")
	t.Setenv("GOALFORGE_REDIS_ADDR", "")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("GOALFORGE_DEVICE_STORE", "floppy")
	_, err = Load()
	require.Error(t, err)
}
