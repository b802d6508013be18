package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/skipper/internal/config"
	"github.com/five82/skipper/internal/prefs"
	"github.com/five82/skipper/internal/printer"
	"github.com/five82/skipper/internal/skip"
	"github.com/five82/skipper/internal/state"
	"github.com/five82/skipper/internal/ui"
)

// Options configure the Skipper application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/skipper/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the Skipper TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := openLog(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := printer.NewClient(cfg.PrinterAPI)
	if err != nil {
		return fmt.Errorf("init printer client: %w", err)
	}

	store := &state.Store{}

	interval := cfg.PollEvery
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	log.Printf("skipper starting: printer=%s poll=%s", cfg.PrinterAPI, interval)

	poller := NewPoller(store, client, interval, cfg.MetadataRetry)
	poller.Start(ctx)

	uiOpts := ui.Options{
		Context:    ctx,
		Store:      store,
		Decoder:    skip.NewDecoder(client, cfg.PickCacheSize),
		Dispatcher: skip.NewDispatcher(client, cfg.SequenceID),
		Config:     &cfg,
		PollTick:   interval,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
	}
	err = ui.Run(uiOpts)
	log.Printf("skipper stopped: %v", err)
	return err
}

// openLog routes the standard logger to path. The terminal belongs to the
// TUI, so nothing may log to stderr while it runs.
func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return tea.LogToFile(path, "skipper")
}
