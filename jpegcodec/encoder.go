// Package jpegcodec binds libvips for the JPEG output path: progressive scans
// with chroma subsampling off, which image/jpeg cannot write. It needs cgo
// and the libvips headers at build time, so it lives apart from media.
package jpegcodec

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var startOnce sync.Once

func start() {
	startOnce.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelWarning)
		vips.Startup(nil)
	})
}

// Encode writes img as progressive 4:4:4 JPEG. Its signature matches
// media.JPEGEncodeFunc.
func Encode(w io.Writer, img image.Image, quality int) error {
	start()

	// libvips loads from an encoded buffer.
	var staged bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&staged, img); err != nil {
		return fmt.Errorf("jpeg staging: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(staged.Bytes())
	if err != nil {
		return fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	out, _, err := ref.ExportJpeg(exportParams(quality))
	if err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("jpeg write: %w", err)
	}
	return nil
}

func exportParams(quality int) *vips.JpegExportParams {
	p := vips.NewJpegExportParams()
	p.Quality = quality
	p.Interlace = true
	p.SubsampleMode = vips.VipsForeignSubsampleOff
	p.StripMetadata = true
	return p
}
