package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearHotelEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOTEL_CONFIG", "HOTEL_API_URL", "VITE_API_URL", "HOTEL_API_TIMEOUT",
		"HOTEL_TOKEN_STORE", "TOKEN_DB_PATH", "REDIS_ADDR", "PORT", "SERVER_URL",
		"HOTEL_DEBUG", "CORS_ALLOWED_ORIGINS", "MCP_AUTH_TOKEN", "DISABLE_AUTH",
	} {
		t.Setenv(key, "")
	}
	// godotenv reads ./.env; run from an empty directory so a developer's
	// local file cannot leak into assertions.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_ReturnsDefaults_When_NothingIsConfigured(t *testing.T) {
	clearHotelEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "memory", cfg.Tokens.Backend)
	assert.Equal(t, "http://localhost:8080", cfg.Server.ServerURL)
	assert.False(t, cfg.Server.DisableAuth, "auth stays on unless explicitly disabled")
	assert.False(t, cfg.Debug.Enabled)
}

func TestLoad_DisablesAuth_When_DisableAuthIsTrue(t *testing.T) {
	clearHotelEnv(t)
	t.Setenv("DISABLE_AUTH", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Server.DisableAuth)
	assert.Empty(t, cfg.Server.AuthToken)
}

func TestLoad_PrefersHotelAPIURL_When_BothURLVariablesAreSet(t *testing.T) {
	clearHotelEnv(t)
	t.Setenv("VITE_API_URL", "http://vite.example/api/v1")
	t.Setenv("HOTEL_API_URL", "https://hotel.example/api/v1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://hotel.example/api/v1", cfg.API.BaseURL)
}

func TestLoad_SelectsSQLiteStore_When_TokenDBPathIsSet(t *testing.T) {
	clearHotelEnv(t)
	t.Setenv("TOKEN_DB_PATH", "/tmp/hotel-creds.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Tokens.Backend)
	assert.Equal(t, "/tmp/hotel-creds.db", cfg.Tokens.Path)
}

func TestLoad_OverlaysYAMLThenEnv_When_ConfigFileExists(t *testing.T) {
	clearHotelEnv(t)
	path := filepath.Join(t.TempDir(), "hotel.yml")
	yml := `
api:
  base_url: https://yaml.example/api/v1
  timeout: 5s
  rate_limit: 2
  burst: 4
server:
  port: "9191"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("HOTEL_CONFIG", path)
	t.Setenv("HOTEL_API_TIMEOUT", "12s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout, "env wins over yaml")
	assert.Equal(t, 2.0, cfg.API.RateLimit)
	assert.Equal(t, 4, cfg.API.Burst)
	assert.Equal(t, "http://localhost:9191", cfg.Server.ServerURL)
}

func TestLoadYAMLConfig_ReturnsDefaults_When_FileIsMissing(t *testing.T) {
	cfg, err := LoadYAMLConfig(filepath.Join(t.TempDir(), "nope.yml"), Default)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLConfig_ReturnsError_When_FileIsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, err := LoadYAMLConfig(path, Default)
	assert.Error(t, err)
}

func TestValidate_ReportsAllProblems_When_SeveralFieldsAreInvalid(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "not a url"
	cfg.Tokens.Backend = "etcd"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an absolute URL")
	assert.Contains(t, err.Error(), `unknown token store backend "etcd"`)
}

func TestValidate_RequiresRedisAddr_When_RedisBackendSelected(t *testing.T) {
	cfg := Default()
	cfg.Tokens.Backend = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}
