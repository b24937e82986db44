package media

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultWatermarkText = "© Rayan Saffron"

	watermarkWidth   = 250
	watermarkHeight  = 40
	watermarkRadius  = 5
	watermarkPadding = 12
	watermarkMargin  = 10
	watermarkFontPt  = 16
)

// Watermark is the pre-rendered overlay stamped on every published image.
type Watermark struct {
	Text  string
	Image *image.NRGBA
}

// NewWatermark renders text in bold white on a translucent dark badge with
// rounded corners. The badge widens when the text does not fit.
func NewWatermark(text string) (*Watermark, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse watermark font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: watermarkFontPt, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()

	textW := font.MeasureString(face, text).Ceil()
	w := watermarkWidth
	if textW+2*watermarkPadding > w {
		w = textW + 2*watermarkPadding
	}
	h := watermarkHeight

	badge := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRoundedRect(badge, watermarkRadius, color.NRGBA{A: 153})

	m := face.Metrics()
	d := &font.Drawer{
		Dst:  badge,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 230}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((w - textW) / 2),
			Y: fixed.I(h/2) + (m.Ascent-m.Descent)/2,
		},
	}
	d.DrawString(text)

	return &Watermark{Text: text, Image: badge}, nil
}

// Apply composites the badge onto img anchored to the bottom-right corner
// with a fixed inset. On images smaller than the badge the position is
// clamped to the top-left and the badge is clipped.
func (w *Watermark) Apply(img image.Image) *image.NRGBA {
	b := img.Bounds()
	return imaging.Overlay(img, w.Image, w.Origin(b.Dx(), b.Dy()), 1.0)
}

// Origin returns the top-left corner the badge lands on for an image of the
// given size.
func (w *Watermark) Origin(width, height int) image.Point {
	wb := w.Image.Bounds()
	return image.Pt(max(0, width-wb.Dx()-watermarkMargin), max(0, height-wb.Dy()-watermarkMargin))
}

func fillRoundedRect(dst *image.NRGBA, r int, c color.NRGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if outsideCorner(x-b.Min.X, y-b.Min.Y, b.Dx(), b.Dy(), r) {
				continue
			}
			dst.SetNRGBA(x, y, c)
		}
	}
}

func outsideCorner(x, y, w, h, r int) bool {
	cx, cy := -1, -1
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= w-r && y < r:
		cx, cy = w-r-1, r
	case x < r && y >= h-r:
		cx, cy = r, h-r-1
	case x >= w-r && y >= h-r:
		cx, cy = w-r-1, h-r-1
	default:
		return false
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy > r*r
}
