package skip

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// PickMap is a decoded identification image: one object ID per pixel.
// ID 0 means no object.
type PickMap struct {
	Width  int
	Height int
	IDs    []uint32

	// scratch is the reusable RGBA overlay buffer, width*height*4 bytes.
	scratch []byte
}

// At returns the object ID at pixel (x, y), or 0 outside the map.
func (p *PickMap) At(x, y int) uint32 {
	if p == nil || x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return 0
	}
	return p.IDs[y*p.Width+x]
}

// Objects returns the distinct non-zero IDs present in the map.
func (p *PickMap) Objects() map[uint32]int {
	counts := make(map[uint32]int)
	if p == nil {
		return counts
	}
	for _, id := range p.IDs {
		if id != 0 {
			counts[id]++
		}
	}
	return counts
}

// DecodeImage converts pixel data to a PickMap. Transparent pixels map to 0;
// otherwise id = R | G<<8 | B<<16 on non-premultiplied channels.
func DecodeImage(img image.Image) *PickMap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	src, ok := img.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		src = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(src, src.Bounds(), img, bounds.Min, draw.Src)
	}

	ids := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := ids[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4 : x*4+4]
			if px[3] == 0 {
				continue
			}
			out[x] = uint32(px[0]) | uint32(px[1])<<8 | uint32(px[2])<<16
		}
	}
	return &PickMap{
		Width:   w,
		Height:  h,
		IDs:     ids,
		scratch: make([]byte, w*h*4),
	}
}

// ImageSource opens pick-map images by URL.
type ImageSource interface {
	OpenPickImage(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

const (
	defaultCacheSize = 8

	// Largest pick-map accepted, checked against the declared size before
	// any pixel data is allocated.
	maxPickPixels = 4096 * 4096
	maxPickBytes  = 64 << 20
)

// Decoder fetches and decodes pick-maps, caching results by URL. Concurrent
// requests for the same URL share one fetch.
type Decoder struct {
	source    ImageSource
	limit     int
	maxPixels int

	mu    sync.Mutex
	cache map[string]*PickMap
	order []string

	group singleflight.Group
}

// NewDecoder builds a Decoder keeping at most cacheSize decoded maps.
func NewDecoder(source ImageSource, cacheSize int) *Decoder {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Decoder{
		source:    source,
		limit:     cacheSize,
		maxPixels: maxPickPixels,
		cache:     make(map[string]*PickMap),
	}
}

// Decode returns the PickMap for url. Errors wrap ErrPickMapDecodeFailed.
func (d *Decoder) Decode(ctx context.Context, url string) (*PickMap, error) {
	key := strings.TrimSpace(url)
	if key == "" {
		return nil, fmt.Errorf("%w: empty url", ErrPickMapDecodeFailed)
	}
	if pm, ok := d.cached(key); ok {
		return pm, nil
	}

	v, err, _ := d.group.Do(key, func() (any, error) {
		if pm, ok := d.cached(key); ok {
			return pm, nil
		}
		pm, err := d.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		d.store(key, pm)
		return pm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PickMap), nil
}

// Cached reports whether url has a decoded map.
func (d *Decoder) Cached(url string) bool {
	_, ok := d.cached(strings.TrimSpace(url))
	return ok
}

func (d *Decoder) fetch(ctx context.Context, url string) (*PickMap, error) {
	if d.source == nil {
		return nil, fmt.Errorf("%w: no image source", ErrPickMapDecodeFailed)
	}
	body, err := d.source.OpenPickImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPickMapDecodeFailed, err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(io.LimitReader(body, maxPickBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %w", ErrPickMapDecodeFailed, err)
	}
	if len(data) > maxPickBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrPickMapDecodeFailed, maxPickBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image header: %w", ErrPickMapDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrPickMapDecodeFailed)
	}
	if cfg.Width > d.maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: image size %dx%d exceeds %d pixels", ErrPickMapDecodeFailed, cfg.Width, cfg.Height, d.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", ErrPickMapDecodeFailed, err)
	}
	return DecodeImage(img), nil
}

func (d *Decoder) cached(key string) (*PickMap, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pm, ok := d.cache[key]
	return pm, ok
}

func (d *Decoder) store(key string, pm *PickMap) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.cache[key]; !ok {
		d.order = append(d.order, key)
	}
	d.cache[key] = pm
	for len(d.order) > d.limit {
		delete(d.cache, d.order[0])
		d.order = d.order[1:]
	}
}
