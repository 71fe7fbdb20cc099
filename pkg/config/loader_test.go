package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialkit/pkg/config"
)

type defaultsConfig struct {
	Name  string `env:"CFG_TEST_NAME" envDefault:"socialkit"`
	Limit int    `env:"CFG_TEST_LIMIT" envDefault:"10"`
	Debug bool   `env:"CFG_TEST_DEBUG" envDefault:"true"`
}

type overrideConfig struct {
	Name  string `env:"CFG_TEST_OVERRIDE_NAME" envDefault:"default"`
	Limit int    `env:"CFG_TEST_OVERRIDE_LIMIT"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

type nestedConfig struct {
	Inner struct {
		Value string `env:"CFG_TEST_NESTED_VALUE" envDefault:"inner"`
	}
}

type fileConfig struct {
	FromFile string `env:"CFG_TEST_FROM_FILE"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config.Reset()
		cfg, err := config.Load[defaultsConfig]()
		require.NoError(t, err)
		assert.Equal(t, "socialkit", cfg.Name)
		assert.Equal(t, 10, cfg.Limit)
		assert.True(t, cfg.Debug)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFG_TEST_OVERRIDE_NAME", "custom")
		t.Setenv("CFG_TEST_OVERRIDE_LIMIT", "25")

		cfg, err := config.Load[overrideConfig]()
		require.NoError(t, err)
		assert.Equal(t, "custom", cfg.Name)
		assert.Equal(t, 25, cfg.Limit)
	})

	t.Run("cached after first load", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFG_TEST_OVERRIDE_NAME", "first")
		first, err := config.Load[overrideConfig]()
		require.NoError(t, err)

		t.Setenv("CFG_TEST_OVERRIDE_NAME", "second")
		second, err := config.Load[overrideConfig]()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("nested structs", func(t *testing.T) {
		config.Reset()
		cfg, err := config.Load[nestedConfig]()
		require.NoError(t, err)
		assert.Equal(t, "inner", cfg.Inner.Value)
	})

	t.Run("missing required value", func(t *testing.T) {
		config.Reset()
		os.Unsetenv("CFG_TEST_REQUIRED_SECRET")
		_, err := config.Load[requiredConfig]()
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("non struct type", func(t *testing.T) {
		_, err := config.Load[string]()
		require.ErrorIs(t, err, config.ErrInvalidConfigType)
	})
}

func TestMustLoad(t *testing.T) {
	config.Reset()
	os.Unsetenv("CFG_TEST_REQUIRED_SECRET")
	assert.Panics(t, func() { config.MustLoad[requiredConfig]() })

	t.Setenv("CFG_TEST_REQUIRED_SECRET", "s3cret")
	config.Reset()
	assert.Equal(t, "s3cret", config.MustLoad[requiredConfig]().Secret)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_FROM_FILE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CFG_TEST_FROM_FILE") })

	require.NoError(t, config.LoadEnv(path))
	config.Reset()

	cfg, err := config.Load[fileConfig]()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.FromFile)

	err = config.LoadEnv(filepath.Join(dir, "missing.env"))
	require.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
