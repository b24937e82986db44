package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/saffron")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "shh")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, BackendCloudinary, cfg.AssetBackend)
	assert.Equal(t, 45*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 1, cfg.UploadConcurrency)
	assert.Equal(t, "storefront.uploads", cfg.UploadEventsSubject)
	assert.False(t, cfg.IsProduction())
}

func TestLoadParsesValues(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLISH_TIMEOUT", "10s")
	t.Setenv("UPLOAD_CONCURRENCY", "4")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("ASSET_BACKEND", "GCS")
	t.Setenv("GSC_BUCKET_NAME", "assets")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 4, cfg.UploadConcurrency)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.Equal(t, BackendGCS, cfg.AssetBackend)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("PUBLISH_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "PUBLISH_TIMEOUT")
}

func TestValidateReportsMissingSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("CLOUDINARY_API_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWT_SECRET not set")
	assert.ErrorContains(t, err, "CLOUDINARY_API_SECRET not set")
}

func TestValidateMemoryBackendOutsideProduction(t *testing.T) {
	setRequired(t)
	t.Setenv("ASSET_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	cfg.AppEnv = "production"
	assert.Error(t, cfg.Validate())
}
