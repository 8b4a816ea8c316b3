// Package config loads server settings from defaults, a .env file, the environment and flags,
// in increasing order of precedence, and configures the global logger.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const envPrefix = "CHECKERS_"

type Server struct {
	APIHost          string
	APIPort          int
	Dev              bool
	StoragePath      string
	PIDPath          string
	PIDLock          bool
	LogLevel         string
	Workers          int
	SearchTimeout    time.Duration
	MaxComputerGames int
}

func Default() Server {
	return Server{
		APIHost:          "localhost",
		APIPort:          8080,
		LogLevel:         "info",
		Workers:          2,
		SearchTimeout:    30 * time.Second,
		MaxComputerGames: 10,
	}
}

// Load builds the server configuration. A missing env file is not an error.
func Load(fset *flag.FlagSet, args []string, envFile string) (Server, error) {
	cfg := Default()

	env, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("reading %s: %w", envFile, err)
	}
	if env == nil {
		env = map[string]string{}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	cfg.bind(fset)
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.PIDLock && cfg.PIDPath == "" {
		return cfg, errors.New("-pid-lock requires -pid")
	}
	return cfg, nil
}

func (c *Server) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("API_HOST", &c.APIHost)
	str("STORAGE_PATH", &c.StoragePath)
	str("PID", &c.PIDPath)
	str("LOG_LEVEL", &c.LogLevel)
	if err := integer("API_PORT", &c.APIPort); err != nil {
		return err
	}
	if err := integer("WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := integer("MAX_COMPUTER_GAMES", &c.MaxComputerGames); err != nil {
		return err
	}
	if v, ok := lookup(envPrefix + "DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDEV: %w", envPrefix, err)
		}
		c.Dev = b
	}
	if v, ok := lookup(envPrefix + "SEARCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSEARCH_TIMEOUT: %w", envPrefix, err)
		}
		c.SearchTimeout = d
	}
	return nil
}

// bind registers flags whose defaults are the values loaded so far
func (c *Server) bind(fset *flag.FlagSet) {
	fset.StringVar(&c.APIHost, "api-host", c.APIHost, "API server host")
	fset.IntVar(&c.APIPort, "api-port", c.APIPort, "API server port")
	fset.BoolVar(&c.Dev, "dev", c.Dev, "Development mode (relaxed rate limits, fixed JWT secret)")
	fset.StringVar(&c.StoragePath, "storage-path", c.StoragePath, "Path to SQLite database file (disables persistence if empty)")
	fset.StringVar(&c.PIDPath, "pid", c.PIDPath, "Optional path to write PID file")
	fset.BoolVar(&c.PIDLock, "pid-lock", c.PIDLock, "Lock PID file to allow only one instance (requires -pid)")
	fset.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (trace, debug, info, warn, error)")
	fset.IntVar(&c.Workers, "workers", c.Workers, "Number of computer move workers")
	fset.DurationVar(&c.SearchTimeout, "search-timeout", c.SearchTimeout, "Maximum time for one computer move")
	fset.IntVar(&c.MaxComputerGames, "max-computer-games", c.MaxComputerGames, "Maximum concurrent games with a computer player")
}

func (c Server) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// ConfigureLogger points the global zerolog logger at out with a console format
func ConfigureLogger(level string, out io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	return nil
}
