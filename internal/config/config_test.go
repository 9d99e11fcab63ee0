package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
  port: 8080
jwt:
  accessSecret: "s1"
  refreshSecret: "s2"
  accessTTLMinutes: 15
  refreshTTLDays: 7
mongo:
  uri: "mongodb://localhost:27017"
  database: "testdb"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "s1", cfg.JWT.AccessSecret)
	assert.Equal(t, "testdb", cfg.Mongo.Database)
	// Untouched fields keep their defaults.
	assert.Equal(t, 15, cfg.JWT.ResetTTLMinutes)
	assert.Equal(t, "users", cfg.Collections.Users)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
jwt:
  accessSecret: "s1"
  refreshSecret: "s2"
mongo:
  uri: "mongodb://localhost:27017"
`)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9999")
	t.Setenv("ACCESS_TOKEN_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 9999, cfg.App.Port)
	assert.Equal(t, "env-secret", cfg.JWT.AccessSecret)
}

func TestTimeoutsComeFromConfig(t *testing.T) {
	path := writeConfig(t, `
jwt:
  accessSecret: "s1"
  refreshSecret: "s2"
mongo:
  uri: "mongodb://localhost:27017"
  connectTimeoutSeconds: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Mongo.ConnectTimeout())
	// Defaults where the file is silent.
	assert.Equal(t, 5*time.Second, cfg.Redis.ConnectTimeout())
	assert.Equal(t, 10*time.Second, cfg.App.ReadTimeout())
	assert.Equal(t, 60*time.Second, cfg.App.IdleTimeout())

	t.Setenv("MONGO_CONNECT_TIMEOUT_SECONDS", "7")
	t.Setenv("REDIS_CONNECT_TIMEOUT_SECONDS", "1")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Mongo.ConnectTimeout())
	assert.Equal(t, time.Second, cfg.Redis.ConnectTimeout())
}

func TestLoadRequiresSecretsAndMongoURI(t *testing.T) {
	path := writeConfig(t, `
mongo:
  uri: "mongodb://localhost:27017"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "ACCESS_TOKEN_SECRET")

	path = writeConfig(t, `
jwt:
  accessSecret: "s1"
  refreshSecret: "s2"
`)
	t.Setenv("DATABASE_URL", "")
	_, err = Load(path)
	assert.ErrorContains(t, err, "DATABASE_URL")
}
