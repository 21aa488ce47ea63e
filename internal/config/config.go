package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	APIURL           string
	ShareBaseURL     string
	DeviceStore      string
	DevicePath       string
	QuantityDebounce time.Duration
	LogFile          string
	LogLevel         string
	Theme            string
}

const (
	defaultConfigPath       = "~/.config/shoplist/config.toml"
	defaultAPIURL           = "http://127.0.0.1:3000/api"
	defaultShareBaseURL     = "http://127.0.0.1:3000"
	defaultDeviceStore      = "file"
	defaultFileDevicePath   = "~/.local/state/shoplist/device.toml"
	defaultSQLiteDevicePath = "~/.local/state/shoplist/device.db"
	defaultQuantityDebounce = 2 * time.Second
	defaultLogFile          = "~/.local/state/shoplist/shoplist.log"
	defaultLogLevel         = "info"
	defaultTheme            = "Nightfox"

	envAPIURL   = "SHOPLIST_API_URL"
	envLogLevel = "SHOPLIST_LOG_LEVEL"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:           defaultAPIURL,
		ShareBaseURL:     defaultShareBaseURL,
		DeviceStore:      defaultDeviceStore,
		DevicePath:       mustExpand(defaultFileDevicePath),
		QuantityDebounce: defaultQuantityDebounce,
		LogFile:          mustExpand(defaultLogFile),
		LogLevel:         defaultLogLevel,
		Theme:            defaultTheme,
	}
}

// Load reads the TOML config at path (or the default location), falling
// back to defaults when the file is missing, then applies environment
// overrides. A .env file in the working directory is loaded first.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string `toml:"api_url"`
		ShareBaseURL     string `toml:"share_base_url"`
		DeviceStore      string `toml:"device_store"`
		DevicePath       string `toml:"device_path"`
		QuantityDebounce string `toml:"quantity_debounce"`
		LogFile          string `toml:"log_file"`
		LogLevel         string `toml:"log_level"`
		Theme            string `toml:"theme"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIURL = orDefault(raw.APIURL, defaultAPIURL)
	cfg.ShareBaseURL = orDefault(raw.ShareBaseURL, defaultShareBaseURL)
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel))
	cfg.Theme = orDefault(raw.Theme, defaultTheme)
	cfg.LogFile = mustExpand(orDefault(raw.LogFile, defaultLogFile))

	cfg.DeviceStore = strings.ToLower(orDefault(raw.DeviceStore, defaultDeviceStore))
	switch cfg.DeviceStore {
	case "file", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("parse config: unknown device_store %q", cfg.DeviceStore)
	}
	cfg.DevicePath = mustExpand(orDefault(raw.DevicePath, DefaultDevicePath(cfg.DeviceStore)))

	if debounce := strings.TrimSpace(raw.QuantityDebounce); debounce != "" {
		d, err := time.ParseDuration(debounce)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: quantity_debounce: %w", err)
		}
		if d > 0 {
			cfg.QuantityDebounce = d
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// DefaultDevicePath returns the default device store location for kind.
func DefaultDevicePath(kind string) string {
	if kind == "sqlite" {
		return defaultSQLiteDevicePath
	}
	return defaultFileDevicePath
}

// ExpandPath resolves ~ and returns an absolute path. Blank paths stay blank.
func ExpandPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return mustExpand(path)
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
