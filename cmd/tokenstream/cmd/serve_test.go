package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommandRequiresAPIKeyWithoutConfig(t *testing.T) {
	out := runCommand(t, "serve", "--data-dir", t.TempDir(), "--config", "")
	assert.Contains(t, out, "--api-key is required")
}

func TestServeCommandReportsUnreadableConfig(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "nope.yaml")

	out := runCommand(t, "serve", "--config", missing)
	assert.Contains(t, out, "Error loading config")
}

func TestResolveServeSettingsFallsBackToConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tokenstream.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	yamlContent := "data_dir: " + dataDir + "\n" +
		"port: 9191\n" +
		"security:\n" +
		"  client_api_key: from-config-key\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	flags := serveCmd.Flags()
	require.NoError(t, flags.Set("api-key", ""))
	require.NoError(t, flags.Set("port", "8080"))
	require.NoError(t, flags.Set("data-dir", "./data"))
	flags.Lookup("api-key").Changed = false
	flags.Lookup("port").Changed = false
	flags.Lookup("data-dir").Changed = false

	settings, err := resolveServeSettings(serveCmd, configPath)
	require.NoError(t, err)
	assert.Equal(t, 9191, settings.port)
	assert.Equal(t, "from-config-key", settings.apiKey)
	assert.Equal(t, dataDir, settings.dataDir)
}

func TestResolveServeSettingsPrefersExplicitFlags(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tokenstream.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("port: 9191\n"), 0o644))

	flags := serveCmd.Flags()
	require.NoError(t, flags.Set("port", "7000"))
	defer func() { flags.Lookup("port").Changed = false }()

	settings, err := resolveServeSettings(serveCmd, configPath)
	require.NoError(t, err)
	assert.Equal(t, 7000, settings.port)
}
