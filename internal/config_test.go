package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/ncdash/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Backend.Retry.MaxAttempts != 1 {
		t.Errorf("retry attempts = %d, want 1 (no retry)", cfg.Backend.Retry.MaxAttempts)
	}
}

func TestBackendConfig_TrimsTrailingSlash(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Backend.BaseURL = "http://backend:8000/"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "http://backend:8000" {
		t.Errorf("base url = %q", cfg.Backend.BaseURL)
	}
}

func TestBackendConfig_Invalid(t *testing.T) {
	for _, u := range []string{"", "backend:8000", "ftp://backend", "/relative"} {
		cfg := NewDefaultConfig()
		cfg.Backend.BaseURL = u
		if err := cfg.Validate(); err == nil {
			t.Errorf("base url %q should fail validation", u)
		}
	}
}

func TestRetryConfig_Invalid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Backend.Retry.MaxAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero attempts should fail validation")
	}
}

func TestBlobsConfig_URLPrefix(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Blobs.URLPrefix = "/images"
	if err := cfg.Validate(); err == nil {
		t.Error("prefix without trailing slash should fail validation")
	}
}

func TestCacheConfig_Negative(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Cache.MaxImages = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative max_images should fail validation")
	}
}

func TestToastConfig_Required(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Toast.Duration = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero toast duration should fail validation")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("NCDASH_BACKEND_URL", "http://ncbackend:9000")
	p := filepath.Join(t.TempDir(), "config.yaml")
	content := `app:
  log_level: debug
  http:
    port: 9090
backend:
  base_url: ${NCDASH_BACKEND_URL:-http://localhost:8000}
  timeout: 30s
  retry:
    max_attempts: 3
    initial_interval: 250ms
blobs:
  path: ./blobs
  url_prefix: /blobs/
sqlite:
  path: ./ncdash.db
cache:
  max_images: 50
toast:
  duration: 5s
events:
  throttle: 1s
auth:
  mode: token
  token: ${NCDASH_TOKEN_UNSET:-devtoken}
`
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(p, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Backend.BaseURL != "http://ncbackend:9000" || cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Backend.Retry.MaxAttempts != 3 || cfg.Backend.Retry.InitialInterval != 250*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Backend.Retry)
	}
	if cfg.Cache.MaxImages != 50 || cfg.Toast.Duration != 5*time.Second || cfg.Events.Throttle != time.Second {
		t.Errorf("cache/toast/events = %+v %+v %+v", cfg.Cache, cfg.Toast, cfg.Events)
	}
	if !cfg.Auth.AuthEnabled() || cfg.Auth.Token != "devtoken" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}
