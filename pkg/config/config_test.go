package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

func (s *sample) Validate() error {
	if s.URL == "" {
		return errors.New("url is required")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("NCDASH_TEST_SET", "http://backend:8000")
	t.Setenv("NCDASH_TEST_EMPTY", "")

	cases := []struct {
		in   string
		want string
	}{
		{"${NCDASH_TEST_SET}", "http://backend:8000"},
		{"$NCDASH_TEST_SET/api", "http://backend:8000/api"},
		{"${NCDASH_TEST_SET:-http://localhost:8000}", "http://backend:8000"},
		{"${NCDASH_TEST_EMPTY:-fallback}", "fallback"},
		{"${NCDASH_TEST_UNSET:-http://localhost:8000}", "http://localhost:8000"},
		{"${NCDASH_TEST_UNSET}", ""},
	}
	for _, c := range cases {
		if got := ExpandEnv(c.in); got != c.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLoadExpandsDefaults(t *testing.T) {
	p := writeFile(t, "url: ${NCDASH_TEST_UNSET:-http://localhost:8000}\ntimeout: 60s\n")

	var cfg sample
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "http://localhost:8000" || cfg.Timeout != "60s" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	p := writeFile(t, "timeout: 60s\n")

	var cfg sample
	if err := Load(p, &cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadWithDefaultsFallsBack(t *testing.T) {
	def := writeFile(t, "url: http://default\n")

	var cfg sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.URL != "http://default" {
		t.Errorf("url = %q", cfg.URL)
	}
}

func TestLoadWithDefaultsKeepsTarget(t *testing.T) {
	cfg := sample{URL: "http://builtin"}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.URL != "http://builtin" {
		t.Errorf("url = %q", cfg.URL)
	}
}
