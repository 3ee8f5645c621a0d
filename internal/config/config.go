// Package config parses the skener command line. Every flag can also be set
// through a SKENER_* environment variable, optionally loaded from a .env file.
// Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	DBPath         string
	Addr           string
	AdminUser      string
	LogPath        string
	Cooldown       time.Duration
	DecodeInterval time.Duration
	SessionTTL     time.Duration
	Debug          bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:         "skener.sqlite3",
		Addr:           ":8080",
		AdminUser:      "Admin",
		Cooldown:       2 * time.Second,
		DecodeInterval: time.Second,
		SessionTTL:     30 * time.Minute,
	}
}

// ErrHelp is returned when -h or -help was given; usage has been printed.
var ErrHelp = flag.ErrHelp

const usage = `Usage: skener [flags]

Flags:
  -d, -db <path>              SQLite database path (default: skener.sqlite3)
  -a, -addr <host:port>       listen address (default: :8080)
  -u, -user <name>            admin username on first run (default: Admin)
  -l, -log <path>             log file path (default: no file, stdout/stderr only)
      -cooldown <dur>         same-symbol suppression window (default: 2s)
      -decode-interval <dur>  minimum time between camera decodes (default: 1s)
      -session-ttl <dur>      close scanning sessions idle this long (default: 30m)
      -debug                  log pipeline decisions
  -h, -help                   show this help and exit

Environment:
  SKENER_DB, SKENER_ADDR, SKENER_USER, SKENER_LOG, SKENER_COOLDOWN,
  SKENER_DECODE_INTERVAL, SKENER_SESSION_TTL, SKENER_DEBUG
  A .env file in the working directory is loaded if present.
`

// Parse reads args (without the program name). envFile is loaded first when
// it exists; variables already set in the process environment are kept.
func Parse(args []string, envFile string, out io.Writer) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := fromEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("skener", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.DurationVar(&cfg.Cooldown, "cooldown", cfg.Cooldown, "")
	fs.DurationVar(&cfg.DecodeInterval, "decode-interval", cfg.DecodeInterval, "")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("SKENER_DB", &cfg.DBPath)
	str("SKENER_ADDR", &cfg.Addr)
	str("SKENER_USER", &cfg.AdminUser)
	str("SKENER_LOG", &cfg.LogPath)

	for key, dst := range map[string]*time.Duration{
		"SKENER_COOLDOWN":        &cfg.Cooldown,
		"SKENER_DECODE_INTERVAL": &cfg.DecodeInterval,
		"SKENER_SESSION_TTL":     &cfg.SessionTTL,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	if v := strings.ToLower(os.Getenv("SKENER_DEBUG")); v == "1" || v == "true" || v == "yes" {
		cfg.Debug = true
	}
	return nil
}

func (c Config) validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("database path must not be empty")
	case c.AdminUser == "":
		return errors.New("admin username must not be empty")
	case c.Cooldown <= 0:
		return fmt.Errorf("cooldown must be positive, got %s", c.Cooldown)
	case c.DecodeInterval < 0:
		return fmt.Errorf("decode interval must not be negative, got %s", c.DecodeInterval)
	case c.SessionTTL <= 0:
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}
