package media

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rayansaffron/storefront/apperr"
)

// MaxPixels caps the width*height a source header may declare.
const MaxPixels = 50_000_000

// Metadata describes a decoded source image.
type Metadata struct {
	Width  int
	Height int
	Format Format
}

func (m Metadata) String() string {
	return fmt.Sprintf("%dx%d %s", m.Width, m.Height, m.Format)
}

// Inspect decodes r and reports the image's dimensions and format. Headers
// declaring more than MaxPixels fail as PayloadTooLarge before decoding. The full
// decode (not just the header) means a truncated file fails here rather than
// in the encoder. EXIF orientation is applied, so the reported dimensions
// are the displayed ones.
func Inspect(r io.ReadSeeker) (Metadata, image.Image, error) {
	const op = "media.Inspect"

	cfg, name, err := image.DecodeConfig(r)
	if err != nil {
		return Metadata{}, nil, apperr.E(apperr.KindUnreadableImage, op, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxPixels {
		return Metadata{}, nil, apperr.Errorf(apperr.KindPayloadTooLarge, op, "image declares %dx%d pixels, at most %d allowed", cfg.Width, cfg.Height, MaxPixels)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Metadata{}, nil, apperr.E(apperr.KindUnreadableImage, op, err)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return Metadata{}, nil, apperr.E(apperr.KindUnreadableImage, op, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Metadata{}, nil, apperr.Errorf(apperr.KindUnreadableImage, op, "empty image bounds %v", b)
	}

	return Metadata{Width: b.Dx(), Height: b.Dy(), Format: formatFromDecoder(name)}, img, nil
}
