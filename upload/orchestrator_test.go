package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/media"
	"github.com/rayansaffron/storefront/storage"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 120, B: 20, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func memFile(field, name, contentType string, data []byte) File {
	return File{
		Field:       field,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type harness struct {
	orch    *Orchestrator
	store   *storage.MemoryStore
	tempDir string
}

func newHarness(t *testing.T, concurrency int, wrap func(Encoder) Encoder, pub Publisher) *harness {
	t.Helper()
	wm, err := media.NewWatermark(media.DefaultWatermarkText)
	require.NoError(t, err)

	var enc Encoder = media.NewEncoder(wm, media.Codecs{})
	if wrap != nil {
		enc = wrap(enc)
	}
	store := storage.NewMemoryStore("https://cdn.test")
	if pub == nil {
		pub = storage.NewPublisher(store, time.Second)
	}
	dir := t.TempDir()
	return &harness{
		orch:    New(enc, pub, Options{TempDir: dir, Concurrency: concurrency}),
		store:   store,
		tempDir: dir,
	}
}

func (h *harness) assertNoTemps(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingEncoder struct {
	Encoder
	failOn int32
	calls  atomic.Int32
}

func (e *failingEncoder) Encode(src image.Image, format media.Format, target media.Target) (*media.Encoded, error) {
	if e.calls.Add(1) == e.failOn {
		return nil, apperr.E(apperr.KindImageProcessingFailed, "test.Encode", errors.New("boom"))
	}
	return e.Encoder.Encode(src, format, target)
}

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, req storage.PublishRequest) (*storage.PublishedAsset, error) {
	return nil, apperr.E(apperr.KindPublishFailed, "test.Publish", errors.New("503"))
}

func TestProcessPrimaryImage(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	res, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{
		"productImage": {memFile("productImage", "saffron.jpg", "image/jpeg", jpegBytes(t, 2000, 1000))},
	})
	require.NoError(t, err)

	asset := res.First("productImage")
	require.NotNil(t, asset)
	assert.Equal(t, 1200, asset.Width)
	assert.Equal(t, 600, asset.Height)
	assert.Equal(t, "jpeg", asset.Format)
	assert.Contains(t, asset.PublicID, storage.FolderProductsMain)
	assert.Len(t, asset.Variants, 4)

	require.Equal(t, 1, res.Summary.TotalFiles)
	f := res.Summary.Files[0]
	assert.Equal(t, "saffron.jpg", f.Name)
	assert.Equal(t, "1200x600", f.Dimensions)
	assert.Equal(t, media.DefaultWatermarkText, f.Watermark)
	assert.Contains(t, f.FinalSize, " KB")

	h.assertNoTemps(t)
}

func TestProcessKeepsDetailOrder(t *testing.T) {
	for _, concurrency := range []int{0, 4} {
		h := newHarness(t, concurrency, nil, nil)

		var details []File
		for i := 0; i < 10; i++ {
			details = append(details, memFile("productDetailsImages", "detail.jpg", "image/jpeg", jpegBytes(t, 100+i, 50)))
		}

		res, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{
			"productDetailsImages": details,
		})
		require.NoError(t, err)

		assets := res.Assets["productDetailsImages"]
		require.Len(t, assets, 10)
		for i, a := range assets {
			assert.Equal(t, 100+i, a.Width, "concurrency %d index %d", concurrency, i)
		}
		assert.Len(t, res.URLs("productDetailsImages"), 10)
		assert.Len(t, res.PublicIDs(), 10)
		assert.Equal(t, 10, h.store.Len())
		h.assertNoTemps(t)
	}
}

func TestProcessRejectsTooManyFilesBeforeReading(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	var opened atomic.Int32
	var details []File
	for i := 0; i < 11; i++ {
		f := memFile("productDetailsImages", "d.jpg", "image/jpeg", []byte("x"))
		f.Open = func() (io.ReadCloser, error) {
			opened.Add(1)
			return io.NopCloser(bytes.NewReader(nil)), nil
		}
		details = append(details, f)
	}

	_, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{"productDetailsImages": details})
	assert.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
	assert.Zero(t, opened.Load())
	assert.Zero(t, h.store.Len())
}

func TestProcessRequiredField(t *testing.T) {
	h := newHarness(t, 0, nil, nil)
	policy := ProductPolicy().Require("productImage")

	_, err := h.orch.Process(context.Background(), policy, map[string][]File{
		"productDetailsImages": {memFile("productDetailsImages", "d.jpg", "image/jpeg", jpegBytes(t, 20, 20))},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
	assert.Zero(t, h.store.Len())
	assert.False(t, ProductPolicy().Fields[0].Required)
}

func TestProcessRejectsDisallowedType(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	_, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{
		"productImage": {memFile("productImage", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))},
	})
	assert.ErrorIs(t, err, apperr.ErrUnsupportedMediaType)
	assert.Zero(t, h.store.Len())
}

func TestProcessRejectsOversizeFile(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	f := memFile("productImage", "huge.jpg", "image/jpeg", []byte("x"))
	f.Size = MaxFileBytes + 1
	_, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{"productImage": {f}})
	assert.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
}

func TestProcessEnforcesSizeOnStream(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	policy := ProductPolicy()
	policy.MaxFileBytes = 64
	f := memFile("productImage", "liar.jpg", "image/jpeg", jpegBytes(t, 32, 32))
	f.Size = 10

	_, err := h.orch.Process(context.Background(), policy, map[string][]File{"productImage": {f}})
	assert.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
	h.assertNoTemps(t)
}

func TestProcessRejectsUnexpectedField(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	_, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{
		"avatar": {memFile("avatar", "a.jpg", "image/jpeg", jpegBytes(t, 10, 10))},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
}

func TestProcessCorruptImageIsUnreadable(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	_, err := h.orch.Process(context.Background(), ProductPolicy(), map[string][]File{
		"productImage": {memFile("productImage", "fake.jpg", "image/jpeg", []byte("BM this is not really an image"))},
	})
	assert.ErrorIs(t, err, apperr.ErrUnreadableImage)
	assert.Zero(t, h.store.Len())
	h.assertNoTemps(t)
}

func TestProcessFailureMidBatchPersistsNothingLocal(t *testing.T) {
	var enc *failingEncoder
	h := newHarness(t, 0, func(inner Encoder) Encoder {
		enc = &failingEncoder{Encoder: inner, failOn: 2}
		return enc
	}, nil)

	details := []File{
		memFile("blogImages", "1.jpg", "image/jpeg", jpegBytes(t, 40, 40)),
		memFile("blogImages", "2.jpg", "image/jpeg", jpegBytes(t, 40, 40)),
		memFile("blogImages", "3.jpg", "image/jpeg", jpegBytes(t, 40, 40)),
	}

	res, err := h.orch.Process(context.Background(), BlogPolicy(), map[string][]File{"blogImages": details})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperr.ErrImageProcessingFailed)
	assert.EqualValues(t, 2, enc.calls.Load())
	// the first file was already published and is left as an orphan
	assert.Equal(t, 1, h.store.Len())
	h.assertNoTemps(t)
}

func TestProcessPublishFailure(t *testing.T) {
	h := newHarness(t, 0, nil, failingPublisher{})

	_, err := h.orch.Process(context.Background(), BlogPolicy(), map[string][]File{
		"blogImage": {memFile("blogImage", "cover.png", "image/png", pngBytes(t, 30, 20))},
	})
	assert.ErrorIs(t, err, apperr.ErrPublishFailed)
	h.assertNoTemps(t)
}

func TestProcessPNGStaysPNG(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	res, err := h.orch.Process(context.Background(), BlogPolicy(), map[string][]File{
		"blogImage": {memFile("blogImage", "cover.png", "image/png", pngBytes(t, 300, 200))},
	})
	require.NoError(t, err)

	asset := res.First("blogImage")
	require.NotNil(t, asset)
	assert.Equal(t, "png", asset.Format)

	obj, ok := h.store.Object(asset.PublicID)
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestProcessEmptyRequest(t *testing.T) {
	h := newHarness(t, 0, nil, nil)

	res, err := h.orch.Process(context.Background(), ProductPolicy(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Summary.TotalFiles)
	assert.Nil(t, res.First("productImage"))
}

func TestAllowedType(t *testing.T) {
	assert.True(t, allowedType("image/jpeg"))
	assert.True(t, allowedType("IMAGE/PNG"))
	assert.True(t, allowedType("image/webp; charset=binary"))
	assert.False(t, allowedType("image/svg+xml"))
	assert.False(t, allowedType(""))
}
