package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[http]
port = 9000

[http.auth]
secretKey = "s3cret"

[fleet]
concurrency = 3
inventoryTimeout = "10s"

[brand]
pluginsDir = "/srv/wp/plugins"
`

func TestLoadConfigFile_DefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, c.Http.Port)
	assert.Equal(t, "s3cret", c.Http.Auth.SecretKey)
	assert.Equal(t, 3, c.Fleet.Concurrency)
	assert.Equal(t, 10*time.Second, c.Fleet.InventoryTimeout)
	assert.Equal(t, 30*time.Second, c.Fleet.OptionsTimeout)
	assert.Equal(t, "/srv/wp/plugins", c.Brand.PluginsDir)
	assert.Equal(t, time.Hour, c.Brand.CacheTTL)
	assert.Equal(t, "production", c.GitHub.Branch)
	assert.Equal(t, "oneupdate-pr-creation.yml", c.GitHub.Workflow)
	assert.Equal(t, 5*time.Second, c.Registry.Timeout)
	assert.Equal(t, 1000, c.Jobs.BatchSize)
	assert.Equal(t, 7*24*time.Hour, c.Jobs.HistoryRetention)
}

func TestLoadConfigFile_DayUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := sample + `
[jobs]
historyRetention = "2w"
uploadTTL = "90m"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 14*24*time.Hour, c.Jobs.HistoryRetention)
	assert.Equal(t, 90*time.Minute, c.Jobs.UploadTTL)
}

func TestLoadConfigFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample+"\n[jobs]\nbatchPause = \"soon\"\n"), 0o644))

	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func TestLoadConfigFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	t.Setenv("ONEUPDATE_GITHUB_BRANCH", "main")

	c, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "main", c.GitHub.Branch)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
