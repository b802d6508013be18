// Package prefs handles Skipper user preferences persistence.
// Preferences are stored in ~/.config/skipper/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for Skipper.
type Prefs struct {
	Theme        string `toml:"theme"`
	ConfirmApply bool   `toml:"confirm_apply"`
}

const (
	defaultPrefsPath = "~/.config/skipper/prefs.toml"
	defaultTheme     = "Carbon"
)

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, ConfirmApply: true}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path. Missing or unreadable files
// fall back to defaults; preferences never block startup.
func Load(path string) Prefs {
	p := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return p
	}

	var raw struct {
		Theme        string `toml:"theme"`
		ConfirmApply *bool  `toml:"confirm_apply"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return p
	}
	if theme := strings.TrimSpace(raw.Theme); theme != "" {
		p.Theme = theme
	}
	if raw.ConfirmApply != nil {
		p.ConfirmApply = *raw.ConfirmApply
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
