package ui

import (
	"image/color"
	"testing"

	"github.com/five82/skipper/internal/skip"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for _, name := range names {
		if GetTheme(name).Name != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, GetTheme(name).Name)
		}
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Carbon"); got != "Slate" {
		t.Fatalf("NextTheme(Carbon) = %q, want Slate", got)
	}
	if got := NextTheme("Paper"); got != "Carbon" {
		t.Fatalf("NextTheme(Paper) = %q, want Carbon (wrap around)", got)
	}
	if got := NextTheme("Unknown"); got != "Carbon" {
		t.Fatalf("NextTheme(Unknown) = %q, want Carbon", got)
	}
}

func TestGetTheme_Fallback(t *testing.T) {
	if got := GetTheme("NonExistent"); got.Name != "Carbon" {
		t.Fatalf("GetTheme(NonExistent).Name = %q, want Carbon", got.Name)
	}
}

func TestThemePalette(t *testing.T) {
	p := GetTheme("Carbon").Palette()
	if p != skip.DefaultPalette {
		t.Fatalf("Carbon palette = %+v, want default %+v", p, skip.DefaultPalette)
	}

	th := GetTheme("Slate")
	th.ObjectSkipped = "not-a-color"
	p = th.Palette()
	if p.Skipped != skip.DefaultPalette.Skipped {
		t.Fatalf("invalid color should fall back, got %+v", p.Skipped)
	}
	if want := (color.RGBA{R: 0x22, G: 0xd3, B: 0xee, A: 0xff}); p.Selected != want {
		t.Fatalf("Selected = %+v, want %+v", p.Selected, want)
	}
}

func TestParseHex(t *testing.T) {
	if c, ok := parseHex("#0A0b0C"); !ok || c != (color.RGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0xff}) {
		t.Fatalf("parseHex = %+v, %v", c, ok)
	}
	if c, ok := parseHex("#fff"); !ok || c != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("parseHex(#fff) = %+v, %v", c, ok)
	}
	for _, bad := range []string{"", "123456a", "#gg0000", "not-a-color"} {
		if _, ok := parseHex(bad); ok {
			t.Fatalf("parseHex(%q) accepted", bad)
		}
	}
}
