package skip

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idColor encodes an object ID the way the printer's pick-maps do.
func idColor(id int) color.NRGBA {
	return color.NRGBA{R: uint8(id), G: uint8(id >> 8), B: uint8(id >> 16), A: 0xff}
}

// pickImage builds a w*h image whose pixels are given row-major as IDs;
// ID 0 pixels are transparent.
func pickImage(w, h int, ids ...int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, id := range ids {
		if id == 0 {
			continue
		}
		img.SetNRGBA(i%w, i/w, idColor(id))
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeSource struct {
	mu     sync.Mutex
	images map[string][]byte
	opens  atomic.Int32
	gate   chan struct{}
}

func (f *fakeSource) OpenPickImage(_ context.Context, url string) (io.ReadCloser, error) {
	f.opens.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.images[url]
	if !ok {
		return nil, errors.New("pick image " + url + " returned status 404")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestDecodeImage_ChannelPacking(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 1})
	img.SetNRGBA(2, 0, color.NRGBA{R: 9, G: 9, B: 9, A: 0})
	img.SetNRGBA(3, 0, color.NRGBA{R: 10, A: 128})

	pm := DecodeImage(img)
	require.Equal(t, 4, pm.Width)
	require.Equal(t, 1, pm.Height)
	assert.Equal(t, []uint32{1 + 2*256 + 3*65536, 0xffffff, 0, 10}, pm.IDs)
	assert.Len(t, pm.scratch, 4*4)
}

func TestDecodeImage_AllChannelCombinations(t *testing.T) {
	// Walk a spread of (R,G,B,A) values through a PNG round trip.
	values := []uint8{0, 1, 127, 128, 254, 255}
	var pixels []color.NRGBA
	for _, r := range values {
		for _, g := range values {
			for _, b := range values {
				for _, a := range []uint8{0, 1, 255} {
					pixels = append(pixels, color.NRGBA{R: r, G: g, B: b, A: a})
				}
			}
		}
	}
	img := image.NewNRGBA(image.Rect(0, 0, len(pixels), 1))
	for i, px := range pixels {
		img.SetNRGBA(i, 0, px)
	}
	decoded, err := png.Decode(bytes.NewReader(encodePNG(t, img)))
	require.NoError(t, err)

	pm := DecodeImage(decoded)
	for i, px := range pixels {
		want := uint32(0)
		if px.A > 0 {
			want = uint32(px.R) + uint32(px.G)*256 + uint32(px.B)*65536
		}
		require.Equal(t, want, pm.IDs[i], "pixel %d = %#v", i, px)
	}
}

func TestDecodeImage_OffsetBoundsAndOtherModels(t *testing.T) {
	src := pickImage(4, 4,
		0, 0, 0, 0,
		0, 5, 6, 0,
		0, 7, 8, 0,
		0, 0, 0, 0,
	)
	sub := src.SubImage(image.Rect(1, 1, 3, 3))
	pm := DecodeImage(sub)
	assert.Equal(t, 2, pm.Width)
	assert.Equal(t, []uint32{5, 6, 7, 8}, pm.IDs)

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	pm = DecodeImage(rgba)
	assert.Equal(t, []uint32{0x302010, 0}, pm.IDs)
}

func TestPickMapAtAndObjects(t *testing.T) {
	pm := DecodeImage(pickImage(3, 2, 1, 1, 0, 0, 2, 2))
	assert.Equal(t, uint32(1), pm.At(1, 0))
	assert.Equal(t, uint32(0), pm.At(2, 0))
	assert.Equal(t, uint32(0), pm.At(-1, 0))
	assert.Equal(t, uint32(0), pm.At(0, 2))
	assert.Equal(t, map[uint32]int{1: 2, 2: 2}, pm.Objects())

	var nilMap *PickMap
	assert.Equal(t, uint32(0), nilMap.At(0, 0))
}

func TestDecoder_CachesByURL(t *testing.T) {
	src := &fakeSource{images: map[string][]byte{
		"/pick/1.png": encodePNG(t, pickImage(2, 1, 10, 20)),
	}}
	d := NewDecoder(src, 4)

	first, err := d.Decode(context.Background(), "/pick/1.png")
	require.NoError(t, err)
	second, err := d.Decode(context.Background(), " /pick/1.png ")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []uint32{10, 20}, second.IDs)
	assert.Equal(t, int32(1), src.opens.Load())
	assert.True(t, d.Cached("/pick/1.png"))
}

func TestDecoder_FailuresWrapSentinel(t *testing.T) {
	src := &fakeSource{images: map[string][]byte{
		"/pick/garbage.png": []byte("not an image"),
	}}
	d := NewDecoder(src, 0)

	pm, err := d.Decode(context.Background(), "/pick/missing.png")
	assert.Nil(t, pm)
	assert.ErrorIs(t, err, ErrPickMapDecodeFailed)
	assert.Contains(t, err.Error(), "404")

	_, err = d.Decode(context.Background(), "/pick/garbage.png")
	assert.ErrorIs(t, err, ErrPickMapDecodeFailed)

	_, err = d.Decode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrPickMapDecodeFailed)

	assert.False(t, d.Cached("/pick/missing.png"))

	_, err = NewDecoder(nil, 1).Decode(context.Background(), "/x.png")
	assert.ErrorIs(t, err, ErrPickMapDecodeFailed)
}

func TestDecoder_RejectsOversizedImage(t *testing.T) {
	src := &fakeSource{images: map[string][]byte{
		"/pick/small.png": encodePNG(t, pickImage(2, 2, 1, 2, 3, 4)),
		"/pick/large.png": encodePNG(t, pickImage(3, 2, 1, 2, 3, 4, 5, 6)),
	}}
	d := NewDecoder(src, 4)
	d.maxPixels = 4

	pm, err := d.Decode(context.Background(), "/pick/large.png")
	assert.Nil(t, pm)
	assert.ErrorIs(t, err, ErrPickMapDecodeFailed)
	assert.Contains(t, err.Error(), "3x2")
	assert.False(t, d.Cached("/pick/large.png"))

	pm, err = d.Decode(context.Background(), "/pick/small.png")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, pm.IDs)
}

func TestDecoder_SharesInFlightFetch(t *testing.T) {
	src := &fakeSource{
		images: map[string][]byte{"/pick/1.png": encodePNG(t, pickImage(1, 1, 3))},
		gate:   make(chan struct{}),
	}
	d := NewDecoder(src, 4)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*PickMap, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pm, err := d.Decode(context.Background(), "/pick/1.png")
			assert.NoError(t, err)
			results[i] = pm
		}(i)
	}
	// Let the first fetch block until every caller has had a chance to join.
	for src.opens.Load() == 0 {
		runtime.Gosched()
	}
	close(src.gate)
	wg.Wait()

	for _, pm := range results {
		require.NotNil(t, pm)
		assert.Equal(t, []uint32{3}, pm.IDs)
	}
	assert.LessOrEqual(t, src.opens.Load(), int32(callers))
	assert.True(t, d.Cached("/pick/1.png"))
}

func TestDecoder_EvictsOldest(t *testing.T) {
	src := &fakeSource{images: map[string][]byte{
		"a": encodePNG(t, pickImage(1, 1, 1)),
		"b": encodePNG(t, pickImage(1, 1, 2)),
		"c": encodePNG(t, pickImage(1, 1, 3)),
	}}
	d := NewDecoder(src, 2)
	for _, url := range []string{"a", "b", "c"} {
		_, err := d.Decode(context.Background(), url)
		require.NoError(t, err)
	}
	assert.False(t, d.Cached("a"))
	assert.True(t, d.Cached("b"))
	assert.True(t, d.Cached("c"))
}
