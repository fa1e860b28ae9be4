package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbillhq/notifykit/pkg/config"
)

type smtpRelayConfig struct {
	Host    string `env:"RELAY_HOST" envDefault:"localhost"`
	Port    int    `env:"RELAY_PORT" envDefault:"25"`
	Enabled bool   `env:"RELAY_ENABLED" envDefault:"true"`
}

type gatewayConfig struct {
	URL    string `env:"TEST_GATEWAY_URL" envDefault:"https://gateway.local"`
	APIKey string `env:"TEST_GATEWAY_KEY" envDefault:"dev-key"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RELAY_HOST", "smtp.example.com")
	t.Setenv("RELAY_PORT", "587")
	t.Setenv("RELAY_ENABLED", "false")
	config.ResetCache()

	var cfg smtpRelayConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "smtp.example.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.False(t, cfg.Enabled)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("RELAY_HOST")
	os.Unsetenv("RELAY_PORT")
	os.Unsetenv("RELAY_ENABLED")
	config.ResetCache()

	var cfg smtpRelayConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 25, cfg.Port)
	assert.True(t, cfg.Enabled)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_TOKEN")
	config.ResetCache()

	var cfg requiredConfig
	err := config.Load(&cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrParsingConfig))
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[smtpRelayConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("TEST_GATEWAY_URL", "https://first.example.com")
	config.ResetCache()

	var first gatewayConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "https://first.example.com", first.URL)

	// Changing the environment after the first load must not leak into
	// later loads of the same type.
	t.Setenv("TEST_GATEWAY_URL", "https://second.example.com")

	var second gatewayConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "https://first.example.com", second.URL)
}

func TestForceReload(t *testing.T) {
	t.Setenv("TEST_GATEWAY_URL", "https://stale.example.com")
	config.ResetCache()

	var cfg gatewayConfig
	require.NoError(t, config.Load(&cfg))

	t.Setenv("TEST_GATEWAY_URL", "https://fresh.example.com")
	require.NoError(t, config.ForceReload(&cfg))
	assert.Equal(t, "https://fresh.example.com", cfg.URL)
}

func TestMustLoad_PanicsOnMissingRequired(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_TOKEN")
	config.ResetCache()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv_CustomFiles(t *testing.T) {
	os.Unsetenv("TEST_ENVFILE_NAME")
	os.Unsetenv("TEST_ENVFILE_TIER")
	config.ResetCache()

	require.NoError(t, config.LoadEnv("testdata/.env.base", "testdata/.env.override"))

	type envFileConfig struct {
		Name string `env:"TEST_ENVFILE_NAME"`
		Tier string `env:"TEST_ENVFILE_TIER"`
	}

	var cfg envFileConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "notifykit", cfg.Name)
	// godotenv does not override variables set by an earlier file.
	assert.Equal(t, "base", cfg.Tier)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/.env.does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrLoadingEnvFiles))
}
