package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/rayansaffron/storefront/apperr"
)

const (
	RootFolder = "rayan-saffron/afghanistan"

	FolderProductsMain    = "products/main"
	FolderProductsDetails = "products/details"
	FolderBlog            = "blog"
	FolderBanners         = "banners"
	FolderGeneral         = "general"

	publicIDPrefix = "rayan-saffron-"

	DefaultPublishTimeout = 45 * time.Second
)

// Variant names a delivery size of a published asset.
type Variant string

const (
	VariantThumbnail Variant = "thumbnail"
	VariantMedium    Variant = "medium"
	VariantLarge     Variant = "large"
	VariantOriginal  Variant = "original"
)

var sizedVariants = []struct {
	name  Variant
	width int
}{
	{VariantThumbnail, 400},
	{VariantMedium, 800},
	{VariantLarge, 1200},
}

// Object is one upload to a Store.
type Object struct {
	PublicID    string
	Folder      string
	Tags        []string
	ContentType string
	Body        io.Reader
	Size        int64
}

// StoredObject is what a Store reports back after an upload. Width, Height
// and Format are zero when the backend does not inspect images.
type StoredObject struct {
	PublicID string
	URL      string
	Format   string
	Bytes    int64
	Width    int
	Height   int
}

// Store is a remote asset host. Upload must be a single call that either
// creates the object with all its tags or nothing.
type Store interface {
	Name() string
	Upload(ctx context.Context, obj Object) (*StoredObject, error)
	VariantURL(publicID string, width int) (string, error)
}

// PublishedAsset is the immutable descriptor handed to the catalog handlers.
type PublishedAsset struct {
	PublicID string             `json:"public_id"`
	URL      string             `json:"url"`
	Variants map[Variant]string `json:"urls"`
	Bytes    int64              `json:"bytes"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Format   string             `json:"format"`
}

type PublishRequest struct {
	Field       string
	Folder      string
	Path        string
	ContentType string
	Format      string
	Width       int
	Height      int
}

// Publisher uploads encoded files to a Store and derives the variant URLs.
type Publisher struct {
	store   Store
	timeout time.Duration
	newID   func() string
}

func NewPublisher(store Store, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Publisher{
		store:   store,
		timeout: timeout,
		newID:   func() string { return publicIDPrefix + uuid.NewString() },
	}
}

func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*PublishedAsset, error) {
	const op = "storage.Publish"

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, apperr.E(apperr.KindPublishFailed, op, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperr.E(apperr.KindPublishFailed, op, err)
	}

	folder := req.Folder
	if folder == "" {
		folder = FolderGeneral
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stored, err := p.store.Upload(ctx, Object{
		PublicID:    p.newID(),
		Folder:      path.Join(RootFolder, folder),
		Tags:        []string{"rayan-saffron", req.Field, "afghan-saffron"},
		ContentType: req.ContentType,
		Body:        f,
		Size:        info.Size(),
	})
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%s upload timed out after %s: %w", p.store.Name(), p.timeout, err)
		}
		return nil, apperr.E(apperr.KindPublishFailed, op, err)
	}

	asset := &PublishedAsset{
		PublicID: stored.PublicID,
		URL:      stored.URL,
		Variants: map[Variant]string{VariantOriginal: stored.URL},
		Bytes:    stored.Bytes,
		Width:    stored.Width,
		Height:   stored.Height,
		Format:   stored.Format,
	}
	if asset.Bytes == 0 {
		asset.Bytes = info.Size()
	}
	if asset.Width == 0 || asset.Height == 0 {
		asset.Width, asset.Height = req.Width, req.Height
	}
	if asset.Format == "" {
		asset.Format = req.Format
	}

	for _, v := range sizedVariants {
		u, err := p.store.VariantURL(stored.PublicID, v.width)
		if err != nil {
			return nil, apperr.E(apperr.KindPublishFailed, op, fmt.Errorf("build %s url: %w", v.name, err))
		}
		asset.Variants[v.name] = u
	}

	return asset, nil
}
