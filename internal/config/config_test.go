package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKDECK_CONFIG_PATH",
		"TASKDECK_API_URL",
		"TASKDECK_TOKEN",
		"TASKDECK_WORKSPACE_ID",
		"TASKDECK_LOG_LEVEL",
		"TASKDECK_LOG_FILE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	// Keep the test away from any real user config file.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.APIURL)
	require.Empty(t, cfg.Token)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("api_url: https://tasks.example.com\ntoken: filetoken\nworkspace_id: w1\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("TASKDECK_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "https://tasks.example.com", cfg.APIURL)
	require.Equal(t, "filetoken", cfg.Token)
	require.Equal(t, "w1", cfg.WorkspaceID)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://file.example.com\n"), 0o600))
	t.Setenv("TASKDECK_CONFIG_PATH", path)
	t.Setenv("TASKDECK_API_URL", "https://env.example.com")
	t.Setenv("TASKDECK_TOKEN", "envtoken")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.APIURL)
	require.Equal(t, "envtoken", cfg.Token)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKDECK_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, config.LogConfig{Level: "debug"}.SlogLevel())
	require.Equal(t, slog.LevelWarn, config.LogConfig{Level: "warn"}.SlogLevel())
	require.Equal(t, slog.LevelError, config.LogConfig{Level: "error"}.SlogLevel())
	require.Equal(t, slog.LevelInfo, config.LogConfig{Level: "nonsense"}.SlogLevel())
}
