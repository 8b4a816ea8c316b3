package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithoutEnvFile(t *testing.T) {
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadPrecedence(t *testing.T) {
	path := writeEnv(t, `CHECKERS_API_PORT=9000
CHECKERS_API_HOST=0.0.0.0
CHECKERS_DEV=true
CHECKERS_WORKERS=3
CHECKERS_SEARCH_TIMEOUT=5s
CHECKERS_LOG_LEVEL=debug
`)
	t.Setenv("CHECKERS_WORKERS", "6")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-api-port", "9100"}, path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.APIPort, "flag beats file")
	assert.Equal(t, 6, cfg.Workers, "environment beats file")
	assert.Equal(t, "0.0.0.0", cfg.APIHost)
	assert.True(t, cfg.Dev)
	assert.Equal(t, 5*time.Second, cfg.SearchTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]struct {
		env  string
		args []string
	}{
		"bad port":     {env: "CHECKERS_API_PORT=http\n"},
		"bad dev":      {env: "CHECKERS_DEV=maybe\n"},
		"bad timeout":  {env: "CHECKERS_SEARCH_TIMEOUT=soon\n"},
		"unknown flag": {args: []string{"-serve"}},
		"lock w/o pid": {args: []string{"-pid-lock"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fset := flag.NewFlagSet("test", flag.ContinueOnError)
			fset.SetOutput(&bytes.Buffer{})
			_, err := Load(fset, tt.args, writeEnv(t, tt.env))
			assert.Error(t, err)
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	defer func(l zerolog.Logger, lvl zerolog.Level) {
		log.Logger = l
		zerolog.SetGlobalLevel(lvl)
	}(log.Logger, zerolog.GlobalLevel())

	var buf bytes.Buffer
	require.NoError(t, ConfigureLogger("warn", &buf))
	log.Info().Msg("hidden")
	log.Warn().Str("game", "g1").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "g1")

	assert.Error(t, ConfigureLogger("loud", &buf))
}
