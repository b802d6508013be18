package ui

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/five82/skipper/internal/skip"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and command bar
	SurfaceAlt string // Preview canvas background
	FocusBg    string // Modal body

	SelectionBg   string
	SelectionText string

	Border string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Object overlay colors
	ObjectAvailable string
	ObjectSelected  string
	ObjectSkipped   string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
// This ensures styled text has explicit backgrounds instead of transparent/inherit.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	return Styles{
		Background: s.Background.Background(bg),
		Surface:    s.Surface.Background(bg),

		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),
		InfoText:    s.InfoText.Background(bg),

		Header:   s.Header.Background(bg),
		Logo:     s.Logo.Background(bg),
		Selected: s.Selected,
	}
}

// Palette converts the theme's object colors into an overlay palette.
// Unparseable colors fall back to the default palette.
func (t Theme) Palette() skip.Palette {
	p := skip.DefaultPalette
	if c, ok := parseHex(t.ObjectAvailable); ok {
		p.Available = c
	}
	if c, ok := parseHex(t.ObjectSelected); ok {
		p.Selected = c
	}
	if c, ok := parseHex(t.ObjectSkipped); ok {
		p.Skipped = c
	}
	return p
}

// parseHex reads a "#rrggbb" or "#rgb" theme color as an opaque RGBA.
func parseHex(s string) (color.RGBA, bool) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
}

// Theme definitions

var themes = map[string]Theme{
	"Carbon": carbonTheme(),
	"Slate":  slateTheme(),
	"Paper":  paperTheme(),
}

var themeOrder = []string{"Carbon", "Slate", "Paper"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return carbonTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func carbonTheme() Theme {
	// IBM Carbon gray-100 palette
	return Theme{
		Name: "Carbon",

		Background: "#161616", // gray-100
		Surface:    "#262626", // gray-90
		SurfaceAlt: "#0b0b0b",
		FocusBg:    "#1f1f1f",

		SelectionBg:   "#393939", // gray-80
		SelectionText: "#f4f4f4", // gray-10

		Border: "#525252", // gray-70

		Text:    "#f4f4f4",
		Muted:   "#a8a8a8", // gray-40
		Faint:   "#6f6f6f", // gray-60
		Accent:  "#78a9ff", // blue-40
		Success: "#42be65", // green-50
		Warning: "#f1c21b", // yellow-30
		Danger:  "#fa4d56", // red-50
		Info:    "#33b1ff", // cyan-40

		ObjectAvailable: "#8a8f98",
		ObjectSelected:  "#00c8ff",
		ObjectSkipped:   "#ff5533",
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800
		FocusBg:    "#0b1222",

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border: "#334155", // slate-700

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		ObjectAvailable: "#94a3b8", // slate-400
		ObjectSelected:  "#22d3ee", // cyan-400
		ObjectSkipped:   "#f97316", // orange-500
	}
}

func paperTheme() Theme {
	// Light theme for bright terminals
	return Theme{
		Name: "Paper",

		Background: "#fafafa",
		Surface:    "#e8e8e8",
		SurfaceAlt: "#ffffff",
		FocusBg:    "#f2f2f2",

		SelectionBg:   "#c6dbf7",
		SelectionText: "#1a1a1a",

		Border: "#bdbdbd",

		Text:    "#1a1a1a",
		Muted:   "#5c5c5c",
		Faint:   "#8c8c8c",
		Accent:  "#0b5fd1",
		Success: "#1b7f3b",
		Warning: "#a15c00",
		Danger:  "#c62828",
		Info:    "#00749e",

		ObjectAvailable: "#9e9e9e",
		ObjectSelected:  "#0091d5",
		ObjectSkipped:   "#e0461f",
	}
}
