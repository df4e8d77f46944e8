package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearClassifierEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CLASSIFIER_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "CLASSIFIER_PROVIDER", "DB_DRIVER", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearClassifierEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ProviderAnthropic, cfg.Classifier.Provider)
	assert.False(t, cfg.Classifier.Configured(), "missing credential is not a load error")
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, int64(50), cfg.Classifier.MaxTokens)
	assert.Equal(t, 15*time.Second, cfg.Classifier.Timeout())
}

func TestLoadProviderCredentialFallback(t *testing.T) {
	clearClassifierEnv(t)
	t.Setenv("CLASSIFIER_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Classifier.APIKey)

	t.Setenv("CLASSIFIER_API_KEY", "explicit")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Classifier.APIKey)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearClassifierEnv(t)
	t.Setenv("DB_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestClassifierTimeoutIsAlwaysFinite(t *testing.T) {
	assert.Equal(t, 15*time.Second, ClassifierConfig{TimeoutSeconds: 0}.Timeout())
	assert.Equal(t, 15*time.Second, ClassifierConfig{TimeoutSeconds: -3}.Timeout())
	assert.Equal(t, 2*time.Second, ClassifierConfig{TimeoutSeconds: 2}.Timeout())
	assert.Zero(t, ClassifierConfig{CacheTTLSeconds: 0}.CacheTTL())
}
