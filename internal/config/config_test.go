// AngelaMos | 2026
// config_test.go

package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
app:
  environment: staging
storage:
  bucket: shared
cookie:
  same_site: Strict
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("DATABASE_URL", "postgres://localhost/asmr")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("R2_AUDIO_BUCKET", "audio")
	t.Setenv("SERVER_AUTH_TOKEN", "s3cret")

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", c.App.Environment)
	assert.Equal(t, "postgres://localhost/asmr", c.Database.URL)
	assert.Equal(t, "s3cret", c.ServerAuth.Token)
	assert.Equal(t, "X-Server-Auth-Token", c.ServerAuth.Header)
	assert.Equal(t, "audio", c.Storage.ResolvedAudioBucket())
	assert.Equal(t, 5*time.Minute, c.Storage.URLExpiry)
	assert.Equal(t, 2*time.Hour, c.JWT.AccessTokenExpire)
	assert.Equal(t, http.SameSiteStrictMode, c.Cookie.SameSiteMode())
	assert.False(t, c.Storage.IsConfigured())
	assert.False(t, c.GiftCards.AllowRepeat)
	assert.Equal(t, 60, c.RateLimit.SpendPerHour)
	assert.Equal(t, 10, c.RateLimit.SpendBurst)
}

func TestLoadGiftCardRepeatAndSpendLimits(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/asmr")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GIFT_CARDS_ALLOW_REPEAT", "true")
	t.Setenv("RATE_LIMIT_SPEND_PER_HOUR", "5")

	c, err := load("")
	require.NoError(t, err)
	assert.True(t, c.GiftCards.AllowRepeat)
	assert.Equal(t, 5, c.RateLimit.SpendPerHour)

	t.Setenv("RATE_LIMIT_SPEND_BURST", "0")
	_, err = load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spend_burst")
}

func TestExampleConfigLoads(t *testing.T) {
	c, err := load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.False(t, c.GiftCards.AllowRepeat)
	assert.Equal(t, time.Minute, c.RateLimit.Window)
	assert.Equal(t, 60, c.RateLimit.SpendPerHour)
	assert.Equal(t, 10, c.RateLimit.SpendBurst)
	assert.Equal(t, "asmr-audio", c.Storage.ResolvedAudioBucket())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateRejectsUnknownSameSite(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/asmr")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("COOKIE_SAME_SITE", "sideways")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same_site")
}

func TestStorageConfigured(t *testing.T) {
	s := StorageConfig{
		Endpoint:        "https://acct.r2.cloudflarestorage.com",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "media",
	}
	assert.True(t, s.IsConfigured())
	assert.Equal(t, "media", s.ResolvedAudioBucket())

	s.SecretAccessKey = ""
	assert.False(t, s.IsConfigured())
}
