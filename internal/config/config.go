package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings Skipper needs to reach the printer.
type Config struct {
	PrinterAPI    string
	LogFile       string
	PollEvery     time.Duration
	MetadataRetry time.Duration
	PickCacheSize int
	SequenceID    string
}

const (
	defaultConfigPath    = "~/.config/skipper/config.toml"
	defaultLogFile       = "~/.local/state/skipper/skipper.log"
	defaultPrinterAPI    = "127.0.0.1:8989"
	defaultPollEvery     = 2 * time.Second
	defaultMetadataRetry = 15 * time.Second
	defaultPickCacheSize = 8
	defaultSequenceID    = "0"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		PrinterAPI:    defaultPrinterAPI,
		LogFile:       mustExpand(defaultLogFile),
		PollEvery:     defaultPollEvery,
		MetadataRetry: defaultMetadataRetry,
		PickCacheSize: defaultPickCacheSize,
		SequenceID:    defaultSequenceID,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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
		PrinterAPI           string `toml:"printer_api"`
		LogFile              string `toml:"log_file"`
		PollSeconds          int    `toml:"poll_seconds"`
		MetadataRetrySeconds int    `toml:"metadata_retry_seconds"`
		PickCacheSize        int    `toml:"pick_cache_size"`
		SequenceID           string `toml:"sequence_id"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if api := strings.TrimSpace(raw.PrinterAPI); api != "" {
		cfg.PrinterAPI = api
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if raw.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.MetadataRetrySeconds > 0 {
		cfg.MetadataRetry = time.Duration(raw.MetadataRetrySeconds) * time.Second
	}
	if raw.PickCacheSize > 0 {
		cfg.PickCacheSize = raw.PickCacheSize
	}
	if seq := strings.TrimSpace(raw.SequenceID); seq != "" {
		cfg.SequenceID = seq
	}

	return cfg, nil
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
