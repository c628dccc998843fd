package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firelist/internal/config"
)

func TestLoad_NoSettingsFile(t *testing.T) {
	t.Setenv(config.EnvProject, "")
	t.Setenv(config.EnvCredentials, "")

	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "tasks", cfg.Settings.TasksCollection)
	assert.Equal(t, "products", cfg.Settings.ProductsCollection)
	assert.Empty(t, cfg.Settings.ProjectID)
	assert.Equal(t, filepath.Join(dir, "service_account.json"), cfg.CredentialsPath())
}

func TestLoad_SettingsWithComments(t *testing.T) {
	t.Setenv(config.EnvProject, "")
	t.Setenv(config.EnvCredentials, "")

	dir := t.TempDir()
	data := `{
  // project used by the mobile app
  "projectId": "todoapp-9262f",
  "credentialsFile": "sa.json",
  "productsCollection": "catalog",
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "todoapp-9262f", cfg.Settings.ProjectID)
	assert.Equal(t, "tasks", cfg.Settings.TasksCollection)
	assert.Equal(t, "catalog", cfg.Settings.ProductsCollection)
	assert.Equal(t, filepath.Join(dir, "sa.json"), cfg.CredentialsPath())
}

func TestLoad_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600))

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config.json")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"projectId":"from-file"}`), 0600))

	abs := filepath.Join(t.TempDir(), "creds.json")
	t.Setenv(config.EnvProject, "from-env")
	t.Setenv(config.EnvCredentials, abs)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Settings.ProjectID)
	assert.Equal(t, abs, cfg.CredentialsPath())
}

func TestFileSettings_IgnoresEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"projectId":"from-file"}`), 0600))
	t.Setenv(config.EnvProject, "from-env")

	s, err := config.New(dir).FileSettings()
	require.NoError(t, err)
	assert.Equal(t, "from-file", s.ProjectID)

	s, err = config.New(t.TempDir()).FileSettings()
	require.NoError(t, err)
	assert.Equal(t, "", s.ProjectID)
	assert.Equal(t, "tasks", s.TasksCollection)
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "firelist"), config.DefaultConfigDir())
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	t.Setenv(config.EnvProject, "")
	t.Setenv(config.EnvCredentials, "")

	dir := filepath.Join(t.TempDir(), "nested")
	cfg := config.New(dir)

	s := cfg.Settings
	s.ProjectID = "demo"
	require.NoError(t, cfg.SaveSettings(s))
	assert.Equal(t, "demo", cfg.Settings.ProjectID)

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, s, loaded.Settings)
}

func TestFilePresence(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New(dir)

	assert.False(t, cfg.HasCredentials())
	assert.False(t, cfg.HasOAuthClient())
	assert.False(t, cfg.HasToken())

	require.NoError(t, config.WriteSecret(cfg.TokenPath(), []byte(`{}`)))
	assert.True(t, cfg.HasToken())

	info, err := os.Stat(cfg.TokenPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, cfg.RemoveToken())
	assert.False(t, cfg.HasToken())
}
