package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at a temp dir, runs in an empty working dir so no
// .env leaks in, and clears the override variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envAPIURL, "")
	t.Setenv(envLogLevel, "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.DeviceStore != "file" {
		t.Fatalf("DeviceStore = %q, want file", cfg.DeviceStore)
	}
	wantDevice, err := expandPath(defaultFileDevicePath)
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if cfg.DevicePath != wantDevice {
		t.Fatalf("DevicePath = %q, want %q", cfg.DevicePath, wantDevice)
	}
	if cfg.QuantityDebounce != 2*time.Second {
		t.Fatalf("QuantityDebounce = %v, want 2s", cfg.QuantityDebounce)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://lists.example.com/api  "
share_base_url = " https://lists.example.com "
device_store = " SQLite "
quantity_debounce = "750ms"
log_level = " DEBUG "
theme = "Nord"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://lists.example.com/api" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.ShareBaseURL != "https://lists.example.com" {
		t.Fatalf("ShareBaseURL = %q", cfg.ShareBaseURL)
	}
	if cfg.DeviceStore != "sqlite" {
		t.Fatalf("DeviceStore = %q, want sqlite", cfg.DeviceStore)
	}
	if !strings.HasPrefix(cfg.DevicePath, home) || !strings.HasSuffix(cfg.DevicePath, "device.db") {
		t.Fatalf("DevicePath = %q, want sqlite default under HOME", cfg.DevicePath)
	}
	if cfg.QuantityDebounce != 750*time.Millisecond {
		t.Fatalf("QuantityDebounce = %v, want 750ms", cfg.QuantityDebounce)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Theme != "Nord" {
		t.Fatalf("Theme = %q, want Nord", cfg.Theme)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv(envAPIURL, "http://override:9000/api")
	t.Setenv(envLogLevel, "WARN")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://file/api"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://override:9000/api" {
		t.Fatalf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	home := isolate(t)
	if err := os.WriteFile(".env", []byte("SHOPLIST_API_URL=http://dotenv/api\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// godotenv.Load sets real process variables; drop it afterwards.
	t.Cleanup(func() { _ = os.Unsetenv(envAPIURL) })
	_ = os.Unsetenv(envAPIURL)

	cfg, err := Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://dotenv/api" {
		t.Fatalf("APIURL = %q, want value from .env", cfg.APIURL)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	cases := map[string]string{
		"toml":     `api_url = [`,
		"store":    `device_store = "redis"`,
		"debounce": `quantity_debounce = "soon"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load returned nil error, want parse error")
			}
			if !strings.Contains(err.Error(), "parse config") {
				t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
	if ExpandPath("  ") != "" {
		t.Fatalf("ExpandPath(blank) should stay blank")
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
