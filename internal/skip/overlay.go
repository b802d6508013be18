package skip

import (
	"image"
	"image/color"
)

// Palette holds the overlay colors for each object state.
type Palette struct {
	Available color.RGBA
	Selected  color.RGBA
	Skipped   color.RGBA
}

// DefaultPalette uses gray for available, cyan for selected and orange-red
// for skipped objects.
var DefaultPalette = Palette{
	Available: color.RGBA{R: 0x8a, G: 0x8f, B: 0x98, A: 0xff},
	Selected:  color.RGBA{R: 0x00, G: 0xc8, B: 0xff, A: 0xff},
	Skipped:   color.RGBA{R: 0xff, G: 0x55, B: 0x33, A: 0xff},
}

// StateFunc reports the selection state of an object ID.
type StateFunc func(id int) ObjectState

// Render recolors pm by object state into its reusable scratch buffer and
// returns the buffer (width*height*4, RGBA). Background pixels stay fully
// transparent. The returned slice is overwritten by the next Render.
func Render(pm *PickMap, state StateFunc, palette Palette) []byte {
	if pm == nil || len(pm.IDs) == 0 {
		return nil
	}
	if len(pm.scratch) != len(pm.IDs)*4 {
		pm.scratch = make([]byte, len(pm.IDs)*4)
	}
	buf := pm.scratch

	colors := [...]color.RGBA{
		ObjectAvailable: palette.Available,
		ObjectSelected:  palette.Selected,
		ObjectSkipped:   palette.Skipped,
	}

	// Pick-maps are mostly long runs of one ID; cache the last lookup.
	var lastID uint32
	var lastColor color.RGBA
	for i, id := range pm.IDs {
		o := i * 4
		if id == 0 {
			buf[o], buf[o+1], buf[o+2], buf[o+3] = 0, 0, 0, 0
			continue
		}
		if id != lastID {
			lastID = id
			lastColor = colors[state(int(id))]
		}
		buf[o], buf[o+1], buf[o+2], buf[o+3] = lastColor.R, lastColor.G, lastColor.B, lastColor.A
	}
	return buf
}

// OverlayImage wraps a rendered buffer as an image for display surfaces.
func OverlayImage(pm *PickMap, buf []byte) *image.RGBA {
	if pm == nil || len(buf) != pm.Width*pm.Height*4 {
		return nil
	}
	return &image.RGBA{
		Pix:    buf,
		Stride: pm.Width * 4,
		Rect:   image.Rect(0, 0, pm.Width, pm.Height),
	}
}
