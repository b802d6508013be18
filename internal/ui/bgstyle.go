package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders fragments onto a fixed background so joined segments do
// not leave unstyled gaps between them.
type BgStyle struct {
	bg lipgloss.Color
}

// NewBgStyle returns a BgStyle for the given background color.
func NewBgStyle(bgColor string) BgStyle {
	return BgStyle{bg: lipgloss.Color(bgColor)}
}

// Render renders s with style on the background.
func (b BgStyle) Render(s string, style lipgloss.Style) string {
	return style.Background(b.bg).Render(s)
}

// Space renders a single background space.
func (b BgStyle) Space() string {
	return b.Spaces(1)
}

// Spaces renders n background spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

// Sep renders a separator string on the background.
func (b BgStyle) Sep(s string) string {
	return lipgloss.NewStyle().Background(b.bg).Render(s)
}

// Join joins parts with sep rendered on the background.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, sep)
}
