package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil, "", io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestFlagsAndAliases(t *testing.T) {
	cfg, err := Parse([]string{"-d", "inv.db", "-addr", "127.0.0.1:9000", "-u", "root", "-cooldown", "3s", "-session-ttl", "1h", "-debug"}, "", io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DBPath != "inv.db" || cfg.Addr != "127.0.0.1:9000" || cfg.AdminUser != "root" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Cooldown != 3*time.Second || cfg.SessionTTL != time.Hour || !cfg.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestEnvironmentFallback(t *testing.T) {
	t.Setenv("SKENER_DB", "env.db")
	t.Setenv("SKENER_DECODE_INTERVAL", "250ms")

	cfg, err := Parse([]string{"-a", ":9090"}, "", io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DBPath != "env.db" || cfg.DecodeInterval != 250*time.Millisecond || cfg.Addr != ":9090" {
		t.Errorf("unexpected config %+v", cfg)
	}

	cfg, err = Parse([]string{"-db", "flag.db"}, "", io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Errorf("flag should override environment, got %s", cfg.DBPath)
	}
}

func TestDotEnvFile(t *testing.T) {
	// t.Setenv restores the variable godotenv sets below.
	t.Setenv("SKENER_LOG", "")
	os.Unsetenv("SKENER_LOG")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SKENER_LOG=/tmp/skener.log\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Parse(nil, path, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LogPath != "/tmp/skener.log" {
		t.Errorf("expected log path from .env, got %q", cfg.LogPath)
	}

	if _, err := Parse(nil, filepath.Join(t.TempDir(), "missing.env"), io.Discard); err != nil {
		t.Errorf("a missing .env file should be ignored: %v", err)
	}
}

func TestInvalid(t *testing.T) {
	tests := [][]string{
		{"-cooldown", "0s"},
		{"-session-ttl", "-1m"},
		{"-db", ""},
		{"-cooldown", "soon"},
		{"extra"},
	}
	for _, args := range tests {
		if _, err := Parse(args, "", io.Discard); err == nil {
			t.Errorf("Parse(%v): expected error", args)
		}
	}

	t.Setenv("SKENER_COOLDOWN", "later")
	if _, err := Parse(nil, "", io.Discard); err == nil {
		t.Error("expected error for bad SKENER_COOLDOWN")
	}
}

func TestHelp(t *testing.T) {
	if _, err := Parse([]string{"-h"}, "", io.Discard); !errors.Is(err, ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}
