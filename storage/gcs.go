package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of the body is read to detect its content type.
const sniffLen = 3072

// GCSStore publishes to a Cloud Storage bucket. The bucket itself cannot
// resize, so variant URLs carry a width parameter for the image CDN that
// fronts publicBaseURL; without one every variant serves the original.
type GCSStore struct {
	cl            *storage.Client
	bucketName    string
	publicBaseURL string
}

// NewGCSStore expects GOOGLE_APPLICATION_CREDENTIALS (or workload identity)
// to be set up for the client.
func NewGCSStore(ctx context.Context, bucketName, publicBaseURL string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return newGCSStore(client, bucketName, publicBaseURL), nil
}

func newGCSStore(client *storage.Client, bucketName, publicBaseURL string) *GCSStore {
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucketName
	}
	return &GCSStore{cl: client, bucketName: bucketName, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *GCSStore) Name() string { return "gcs" }

func (s *GCSStore) Close() error { return s.cl.Close() }

func (s *GCSStore) Upload(ctx context.Context, obj Object) (*StoredObject, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(obj.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read body: %w", err)
	}
	head = head[:n]
	mtype := mimetype.Detect(head)

	objectPath := path.Join(obj.Folder, obj.PublicID+mtype.Extension())

	// Cancelling before Close aborts the upload, so a failed copy never
	// leaves a partial object behind.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := s.cl.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	wc.ContentType = mtype.String()
	wc.Metadata = map[string]string{"tags": strings.Join(obj.Tags, ",")}

	written, err := io.Copy(wc, io.MultiReader(bytes.NewReader(head), obj.Body))
	if err != nil {
		return nil, fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("Writer.Close: %w", err)
	}

	return &StoredObject{
		PublicID: objectPath,
		URL:      s.objectURL(objectPath),
		Format:   strings.TrimPrefix(mtype.Extension(), "."),
		Bytes:    written,
	}, nil
}

func (s *GCSStore) VariantURL(publicID string, width int) (string, error) {
	return fmt.Sprintf("%s?w=%d", s.objectURL(publicID), width), nil
}

func (s *GCSStore) objectURL(objectPath string) string {
	return s.publicBaseURL + "/" + objectPath
}
