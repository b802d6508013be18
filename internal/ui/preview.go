package ui

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/five82/skipper/internal/skip"
)

// The preview draws two pick-map rows per terminal row with an upper half
// block: the foreground paints the top half and the background the bottom.
const halfBlock = "▀"

// previewCell holds the sampled colors of one terminal cell. A zero alpha
// means background.
type previewCell struct {
	top    color.RGBA
	bottom color.RGBA
}

// fitPreview returns the largest cell area with the pick-map's aspect ratio
// that fits in maxCols x maxRows. Each cell is one pixel wide and two tall.
func fitPreview(width, height, maxCols, maxRows int) (cols, rows int) {
	if width <= 0 || height <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	rows = int(math.Ceil(float64(cols) * float64(height) / float64(width) / 2))
	if rows > maxRows {
		rows = maxRows
		cols = int(math.Floor(float64(rows) * 2 * float64(width) / float64(height)))
	}
	return max(cols, 1), max(rows, 1)
}

// previewCells samples an overlay buffer into cols x rows cells. Sampling
// uses the same scaling as skip.Locate so a click lands on the object drawn
// under the pointer.
func previewCells(pm *skip.PickMap, buf []byte, cols, rows int) [][]previewCell {
	if pm == nil || cols <= 0 || rows <= 0 || len(buf) != pm.Width*pm.Height*4 {
		return nil
	}
	cells := make([][]previewCell, rows)
	for cy := range rows {
		line := make([]previewCell, cols)
		for cx := range cols {
			x := float64(cx) + 0.5
			line[cx] = previewCell{
				top:    samplePixel(pm, buf, x, float64(cy)+0.25, cols, rows),
				bottom: samplePixel(pm, buf, x, float64(cy)+0.75, cols, rows),
			}
		}
		cells[cy] = line
	}
	return cells
}

func samplePixel(pm *skip.PickMap, buf []byte, x, y float64, cols, rows int) color.RGBA {
	px := min(int(math.Floor(x*float64(pm.Width)/float64(cols))), pm.Width-1)
	py := min(int(math.Floor(y*float64(pm.Height)/float64(rows))), pm.Height-1)
	o := (py*pm.Width + px) * 4
	return color.RGBA{R: buf[o], G: buf[o+1], B: buf[o+2], A: buf[o+3]}
}

// clickRow returns the pointer row to hit-test for a click on terminal row
// y. Each cell draws two pick-map rows, sampled at the same offsets as
// previewCells. The upper half, painted by the glyph, wins when it shows an
// object; otherwise the lower half is used. A cell that is background in
// both halves falls back to its center.
func clickRow(pm *skip.PickMap, geom skip.CanvasGeometry, x float64, y int) float64 {
	top, bottom := float64(y)+0.25, float64(y)+0.75
	if _, ok := skip.Locate(x, top, geom, pm); ok {
		return top
	}
	if _, ok := skip.Locate(x, bottom, geom, pm); ok {
		return bottom
	}
	return float64(y) + 0.5
}

// renderPreview turns sampled cells into styled half-block lines. Runs of
// identical cells share one style.
func renderPreview(cells [][]previewCell, background string) []string {
	lines := make([]string, 0, len(cells))
	for _, row := range cells {
		var b strings.Builder
		run := 0
		var current previewCell
		flush := func() {
			if run == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(cellColor(current.top, background)).
				Background(cellColor(current.bottom, background))
			b.WriteString(style.Render(strings.Repeat(halfBlock, run)))
			run = 0
		}
		for _, cell := range row {
			if run > 0 && cell != current {
				flush()
			}
			current = cell
			run++
		}
		flush()
		lines = append(lines, b.String())
	}
	return lines
}

func cellColor(c color.RGBA, background string) lipgloss.Color {
	if c.A == 0 {
		return lipgloss.Color(background)
	}
	return lipgloss.Color(hexColor(c))
}

func hexColor(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
