// Package webpcodec binds libwebp for the lossy WebP output path. It needs
// cgo and the libwebp headers at build time, so it lives apart from media.
package webpcodec

import (
	"fmt"
	"image"
	"io"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// AlphaQuality is the alpha plane quality, kept below the colour quality.
const AlphaQuality = 80

// Encode writes img as lossy WebP. Its signature matches media.WebPEncodeFunc.
func Encode(w io.Writer, img image.Image, quality float32) error {
	opts, err := options(quality)
	if err != nil {
		return err
	}
	if err := webp.Encode(w, img, opts); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

func options(quality float32) (*encoder.Options, error) {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("webp options: %w", err)
	}
	opts.AlphaQuality = AlphaQuality
	return opts, nil
}
