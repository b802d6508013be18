package skip

import "math"

// CanvasGeometry describes where a pick-map is displayed. Left/Top and the
// display size are in pointer coordinates; the buffer size is the backing
// pixel grid, usually the pick-map's own dimensions.
type CanvasGeometry struct {
	Left          float64
	Top           float64
	DisplayWidth  float64
	DisplayHeight float64
	BufferWidth   int
	BufferHeight  int
}

// Locate maps a pointer position to an object ID. It returns false for
// positions outside the displayed area, background pixels, or a missing map.
func Locate(x, y float64, geom CanvasGeometry, pm *PickMap) (int, bool) {
	if pm == nil || len(pm.IDs) == 0 || pm.Width <= 0 || pm.Height <= 0 {
		return 0, false
	}
	if geom.DisplayWidth <= 0 || geom.DisplayHeight <= 0 {
		return 0, false
	}
	dx, dy := x-geom.Left, y-geom.Top
	if dx < 0 || dy < 0 || dx >= geom.DisplayWidth || dy >= geom.DisplayHeight {
		return 0, false
	}

	bw, bh := geom.BufferWidth, geom.BufferHeight
	if bw <= 0 || bh <= 0 {
		bw, bh = pm.Width, pm.Height
	}
	px := clamp(int(math.Floor(dx*float64(bw)/geom.DisplayWidth)), pm.Width)
	py := clamp(int(math.Floor(dy*float64(bh)/geom.DisplayHeight)), pm.Height)

	id := pm.IDs[py*pm.Width+px]
	if id == 0 {
		return 0, false
	}
	return int(id), true
}

func clamp(v, size int) int {
	if v < 0 {
		return 0
	}
	if v > size-1 {
		return size - 1
	}
	return v
}
