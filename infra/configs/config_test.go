package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, c.GetStoryConfig().MaxRetries)
	assert.Equal(t, "fantasy", c.GetStoryConfig().DefaultTheme)
	assert.Equal(t, 500*time.Millisecond, c.GetStoryConfig().RetryBaseDelay)
	assert.Equal(t, "sqlite", c.GetDatabaseConfig().Driver)
	assert.Equal(t, 5*time.Minute, c.GetJobConfig().Timeout)
	assert.False(t, c.GetRedisConfig().Enable)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
story:
  provider: ark
  model_name: doubao-seed
  max_retries: 5
database:
  driver: mysql
  host: db
  port: 3307
  user: u
  password: p
  name: adv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ADVENTURE_STORY_API_KEY", "secret-key")
	t.Setenv("ADVENTURE_STORY_MAX_RETRIES", "4")

	c, err := Load(path)
	require.NoError(t, err)

	story := c.GetStoryConfig()
	assert.Equal(t, "ark", story.Provider)
	assert.Equal(t, "doubao-seed", story.ModelName)
	assert.Equal(t, "secret-key", story.ApiKey)
	assert.Equal(t, 4, story.MaxRetries)
	assert.Equal(t, "u:p@tcp(db:3307)/adv?charset=utf8mb4&parseTime=True&loc=Local", c.GetDatabaseConfig().MysqlDSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv("ADVENTURE_CONFIG", "/etc/adventure.yaml")
	assert.Equal(t, "/etc/adventure.yaml", ResolvePath())
	t.Setenv("ADVENTURE_CONFIG", "")
	assert.Equal(t, "conf/config.yaml", ResolvePath())
}
