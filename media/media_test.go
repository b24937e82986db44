package media

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/rayansaffron/storefront/apperr"
)

var saffron = color.NRGBA{R: 200, G: 100, B: 50, A: 255}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(w, h, saffron), &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestEncoder(t *testing.T, codecs Codecs) *Encoder {
	t.Helper()
	wm, err := NewWatermark(DefaultWatermarkText)
	require.NoError(t, err)
	return NewEncoder(wm, codecs)
}

func TestResolveNeverUpscales(t *testing.T) {
	for _, role := range []Role{RolePrimary, RoleDetail, RoleOther} {
		for _, w := range []int{1, 300, role.DefaultCeiling()} {
			target := Resolve(role, 0, w, 500)
			assert.Equal(t, w, target.Width, "role %s width %d", role, w)
		}
	}
}

func TestResolveCapsAtCeilingAndKeepsAspect(t *testing.T) {
	cases := []struct {
		role       Role
		ceiling    int
		srcW, srcH int
		wantW      int
	}{
		{RolePrimary, 0, 2000, 1000, 1200},
		{RoleDetail, 0, 3000, 2001, 1000},
		{RoleDetail, 1200, 4000, 3000, 1200},
		{RoleOther, 0, 1601, 999, 800},
	}
	for _, tc := range cases {
		target := Resolve(tc.role, tc.ceiling, tc.srcW, tc.srcH)
		require.Equal(t, tc.wantW, target.Width)

		exact := float64(target.Width) * float64(tc.srcH) / float64(tc.srcW)
		assert.Less(t, abs(float64(target.Height)-exact), 1.0)
	}
}

func TestResolvePrimaryScenario(t *testing.T) {
	target := Resolve(RolePrimary, 0, 2000, 1000)
	assert.Equal(t, Target{Role: RolePrimary, Width: 1200, Height: 600}, target)
}

func TestInspectJPEG(t *testing.T) {
	meta, img, err := Inspect(bytes.NewReader(encodeJPEG(t, 640, 480)))
	require.NoError(t, err)

	assert.Equal(t, Metadata{Width: 640, Height: 480, Format: FormatJPEG}, meta)
	assert.Equal(t, 640, img.Bounds().Dx())
}

func TestInspectBMPIsOther(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solidImage(20, 10, saffron)))

	meta, _, err := Inspect(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, FormatOther, meta.Format)
}

func TestInspectCorruptBytes(t *testing.T) {
	_, _, err := Inspect(bytes.NewReader([]byte("BM this is not really a bitmap")))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnreadableImage)
}

func TestInspectTruncatedPNG(t *testing.T) {
	data := encodePNG(t, solidImage(64, 64, saffron))
	_, _, err := Inspect(bytes.NewReader(data[:len(data)/2]))
	assert.ErrorIs(t, err, apperr.ErrUnreadableImage)
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h RGB
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12] = 8 // bit depth
	ihdr[13] = 2 // truecolour

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func TestInspectRejectsOversizedDimensions(t *testing.T) {
	_, _, err := Inspect(bytes.NewReader(pngHeader(20000, 20000)))
	assert.ErrorIs(t, err, apperr.ErrPayloadTooLarge)

	// Within the ceiling the header passes and the missing data is what fails.
	_, _, err = Inspect(bytes.NewReader(pngHeader(5000, 5000)))
	assert.ErrorIs(t, err, apperr.ErrUnreadableImage)
}

func TestEncodeJPEGPrimaryWithWatermark(t *testing.T) {
	enc := newTestEncoder(t, Codecs{})

	meta, src, err := Inspect(bytes.NewReader(encodeJPEG(t, 2000, 1000)))
	require.NoError(t, err)
	target := Resolve(RolePrimary, 0, meta.Width, meta.Height)

	out, err := enc.Encode(src, meta.Format, target)
	require.NoError(t, err)

	assert.Equal(t, FormatJPEG, out.Format)
	assert.Equal(t, 1200, out.Width)
	assert.Equal(t, 600, out.Height)
	assert.Equal(t, DefaultWatermarkText, out.Watermark)

	decoded, name, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", name)
	assert.Equal(t, image.Rect(0, 0, 1200, 600), decoded.Bounds())

	// Inside the badge, near its right edge: darkened by the translucent fill.
	r, _, _, _ := decoded.At(1200-watermarkMargin-4, 600-watermarkMargin-watermarkHeight/2).RGBA()
	assert.Less(t, r>>8, uint32(140))

	// Far from the badge the source colour survives.
	r, _, _, _ = decoded.At(20, 20).RGBA()
	assert.Greater(t, r>>8, uint32(180))
}

func TestEncodePNGStaysPNG(t *testing.T) {
	enc := newTestEncoder(t, Codecs{})

	src := solidImage(300, 200, color.NRGBA{R: 10, G: 120, B: 200, A: 128})
	meta, img, err := Inspect(bytes.NewReader(encodePNG(t, src)))
	require.NoError(t, err)
	require.Equal(t, FormatPNG, meta.Format)

	out, err := enc.Encode(img, meta.Format, Resolve(RoleOther, 0, meta.Width, meta.Height))
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, out.Format)
	assert.Equal(t, ".png", out.Extension())

	decoded, name, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", name)
	_, paletted := decoded.(*image.Paletted)
	assert.True(t, paletted)

	// Transparent areas are flattened on white, so every pixel is opaque.
	_, _, _, a := decoded.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeUnknownFormatDefaultsToJPEG(t *testing.T) {
	enc := newTestEncoder(t, Codecs{})

	out, err := enc.Encode(solidImage(100, 50, saffron), FormatOther, Resolve(RoleOther, 0, 100, 50))
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, out.Format)
	assert.Equal(t, "image/jpeg", out.ContentType())
}

func TestEncodeWebPUsesInjectedEncoder(t *testing.T) {
	var gotQuality float32
	webp := func(w io.Writer, img image.Image, quality float32) error {
		gotQuality = quality
		return png.Encode(w, img)
	}
	enc := newTestEncoder(t, Codecs{WebP: webp})

	out, err := enc.Encode(solidImage(400, 400, saffron), FormatWebP, Resolve(RoleDetail, 0, 400, 400))
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, out.Format)
	assert.Equal(t, float32(WebPQuality), gotQuality)
}

func TestEncodeJPEGUsesInjectedEncoder(t *testing.T) {
	var (
		gotQuality int
		gotBounds  image.Rectangle
	)
	jpg := func(w io.Writer, img image.Image, quality int) error {
		gotQuality, gotBounds = quality, img.Bounds()
		return jpeg.Encode(w, img, nil)
	}
	enc := newTestEncoder(t, Codecs{JPEG: jpg})

	out, err := enc.Encode(solidImage(1600, 800, saffron), FormatJPEG, Resolve(RolePrimary, 0, 1600, 800))
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, out.Format)
	assert.Equal(t, JPEGQuality, gotQuality)
	assert.Equal(t, image.Rect(0, 0, 1200, 600), gotBounds)
}

func TestEncodeWebPWithoutEncoderFails(t *testing.T) {
	enc := newTestEncoder(t, Codecs{})

	_, err := enc.Encode(solidImage(10, 10, saffron), FormatWebP, Resolve(RoleDetail, 0, 10, 10))
	assert.ErrorIs(t, err, apperr.ErrImageProcessingFailed)
}

func TestWatermarkOriginClampsOnSmallImages(t *testing.T) {
	wm, err := NewWatermark(DefaultWatermarkText)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(0, 0), wm.Origin(50, 20))
	assert.Equal(t, image.Pt(1200-watermarkWidth-watermarkMargin, 600-watermarkHeight-watermarkMargin), wm.Origin(1200, 600))

	stamped := wm.Apply(solidImage(50, 20, saffron))
	assert.Equal(t, image.Rect(0, 0, 50, 20), stamped.Bounds())
}

func TestPaletteSize(t *testing.T) {
	assert.Equal(t, 217, paletteSize(85))
	assert.Equal(t, 256, paletteSize(100))
	assert.Equal(t, 2, paletteSize(0))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
