package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/five82/shoplist/internal/config"
	"github.com/five82/shoplist/internal/device"
	"github.com/five82/shoplist/internal/gateway"
	"github.com/five82/shoplist/internal/logging"
	"github.com/five82/shoplist/internal/state"
	"github.com/five82/shoplist/internal/ui"
)

// Options configure the shoplist application.
type Options struct {
	ConfigPath string
	ListRef    string // share id or link to open at launch (optional)
	Store      string // device store kind override: file, sqlite, memory
	Plain      bool   // print the list instead of starting the TUI
	Stdout     io.Writer
}

// Run boots shoplist until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closeLog()

	kind, path := deviceLocation(cfg, opts.Store)
	store, err := device.Open(kind, path, logger)
	if err != nil {
		return fmt.Errorf("open device store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close device store", "error", err)
		}
	}()

	client, err := gateway.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init gateway client: %w", err)
	}

	ctrl, err := state.New(state.Options{
		Gateway:          client,
		Device:           store,
		Logger:           logger,
		LaunchRef:        opts.ListRef,
		QuantityDebounce: cfg.QuantityDebounce,
		Context:          ctx,
	})
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}
	defer ctrl.Close()

	logger.Info("shoplist starting",
		"api", client.BaseURL(),
		"device_store", kind,
		"device_path", path,
	)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if opts.Plain || !interactive(stdout) {
		return runPlain(ctx, ctrl, stdout, cfg.ShareBaseURL)
	}

	themeName := cfg.Theme
	if saved, ok := store.Theme(); ok {
		themeName = saved
	}

	return ui.Run(ui.Options{
		Context:      ctx,
		Controller:   ctrl,
		ShareBaseURL: cfg.ShareBaseURL,
		ThemeName:    themeName,
		SaveTheme:    store.SetTheme,
		LogPath:      cfg.LogFile,
		Logger:       logger,
	})
}

// deviceLocation applies the store override. Switching kind without a
// configured path moves to that kind's default location.
func deviceLocation(cfg config.Config, override string) (string, string) {
	kind := strings.ToLower(strings.TrimSpace(override))
	if kind == "" || kind == cfg.DeviceStore {
		return cfg.DeviceStore, cfg.DevicePath
	}
	return kind, config.ExpandPath(config.DefaultDevicePath(kind))
}

func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runPlain resolves the startup list and prints it once.
func runPlain(ctx context.Context, ctrl *state.Controller, w io.Writer, shareBaseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, ui.ResolveTimeout)
	defer cancel()
	if err := ctrl.Resolve(ctx); err != nil {
		return fmt.Errorf("load list: %w", err)
	}
	return writePlain(w, ctrl.Snapshot(), shareBaseURL)
}
