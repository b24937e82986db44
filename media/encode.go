package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/rayansaffron/storefront/apperr"
)

const (
	JPEGQuality    = 85
	PaletteQuality = 85
	WebPQuality    = 82
	SharpenSigma   = 0.5
)

// JPEGEncodeFunc writes img as progressive JPEG with 4:4:4 chroma at the
// given quality.
type JPEGEncodeFunc func(w io.Writer, img image.Image, quality int) error

// WebPEncodeFunc writes img as lossy WebP at the given quality.
type WebPEncodeFunc func(w io.Writer, img image.Image, quality float32) error

// Codecs are the native encoders behind the JPEG and WebP paths. A nil JPEG
// falls back to image/jpeg, which only writes baseline 4:2:0; a nil WebP
// makes webp sources fail.
type Codecs struct {
	JPEG JPEGEncodeFunc
	WebP WebPEncodeFunc
}

// Encoded is the re-encoded, watermarked output for one file.
type Encoded struct {
	Data   []byte
	Format Format
	Width  int
	Height int
	// Watermark is the overlay text stamped on the image.
	Watermark string
}

func (e *Encoded) Extension() string {
	if e.Format == FormatJPEG {
		return ".jpg"
	}
	return "." + string(e.Format)
}

func (e *Encoded) ContentType() string {
	return "image/" + string(e.Format)
}

// Encoder resizes, watermarks and re-encodes decoded images. It holds no
// per-file state and is safe for concurrent use.
type Encoder struct {
	watermark *Watermark
	codecs    Codecs
}

func NewEncoder(wm *Watermark, codecs Codecs) *Encoder {
	return &Encoder{watermark: wm, codecs: codecs}
}

// Encode applies the format policy:
//   - png and gif become a palette PNG on an opaque white background;
//   - webp stays webp and keeps its alpha channel;
//   - everything else becomes progressive 4:4:4 JPEG on white with a light
//     unsharp mask.
//
// The watermark is composited after every other pixel operation.
func (e *Encoder) Encode(src image.Image, format Format, target Target) (*Encoded, error) {
	const op = "media.Encode"

	resized := resize(src, target.Width, target.Height)

	var (
		buf bytes.Buffer
		out Format
		err error
	)
	switch {
	case format.IsPalette():
		canvas := e.stamp(flatten(resized))
		out = FormatPNG
		err = encodePalettePNG(&buf, canvas, PaletteQuality)
	case format == FormatWebP:
		if e.codecs.WebP == nil {
			return nil, apperr.E(apperr.KindImageProcessingFailed, op, errors.New("webp encoder not configured"))
		}
		canvas := e.stamp(resized)
		out = FormatWebP
		err = e.codecs.WebP(&buf, canvas, WebPQuality)
	default:
		canvas := e.stamp(sharpen(flatten(resized), SharpenSigma))
		out = FormatJPEG
		err = e.encodeJPEG(&buf, canvas)
	}
	if err != nil {
		return nil, apperr.E(apperr.KindImageProcessingFailed, op, err)
	}

	b := resized.Bounds()
	enc := &Encoded{Data: buf.Bytes(), Format: out, Width: b.Dx(), Height: b.Dy()}
	if e.watermark != nil {
		enc.Watermark = e.watermark.Text
	}
	return enc, nil
}

func (e *Encoder) encodeJPEG(w io.Writer, img image.Image) error {
	if e.codecs.JPEG == nil {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	}
	return e.codecs.JPEG(w, img, JPEGQuality)
}

func (e *Encoder) stamp(img image.Image) image.Image {
	if e.watermark == nil {
		return img
	}
	return e.watermark.Apply(img)
}

func resize(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(src)
	}
	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, src)
	return dst
}

func sharpen(src image.Image, sigma float32) *image.NRGBA {
	g := gift.New(gift.UnsharpMask(sigma, 1.0, 0))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// flatten composites src over opaque white.
func flatten(src image.Image) *image.NRGBA {
	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}

// paletteSize maps a 1-100 quality to the number of palette entries.
func paletteSize(quality int) int {
	n := 256 * quality / 100
	switch {
	case n < 2:
		return 2
	case n > 256:
		return 256
	}
	return n
}

func encodePalettePNG(w io.Writer, img image.Image, quality int) error {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, paletteSize(quality)), img)
	if len(pal) == 0 {
		return errors.New("quantizer produced an empty palette")
	}

	b := img.Bounds()
	pm := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(pm, b, img, b.Min)

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, pm)
}
