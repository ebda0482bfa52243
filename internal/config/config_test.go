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
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.RateLimitProject)
	assert.Equal(t, "dev-secret-change-me", cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_TTL")
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\njwt_ttl: 2h\nanon_message_daily_quota: 9\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 9, cfg.AnonMessageDailyQuota)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: "http://a.test, http://b.test,,"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
}
