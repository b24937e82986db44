package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// deliveryTransformation asks Cloudinary to negotiate quality and format
// per client on delivery.
const deliveryTransformation = "q_auto:good/f_auto"

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are incomplete")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Name() string { return "cloudinary" }

func (s *CloudinaryStore) Upload(ctx context.Context, obj Object) (*StoredObject, error) {
	resp, err := s.cld.Upload.Upload(ctx, obj.Body, uploader.UploadParams{
		PublicID:       obj.PublicID,
		Folder:         obj.Folder,
		ResourceType:   "image",
		Tags:           obj.Tags,
		Transformation: deliveryTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	return &StoredObject{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
		Format:   resp.Format,
		Bytes:    int64(resp.Bytes),
		Width:    resp.Width,
		Height:   resp.Height,
	}, nil
}

// VariantURL builds an on-the-fly resized delivery URL; nothing is uploaded.
func (s *CloudinaryStore) VariantURL(publicID string, width int) (string, error) {
	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", err
	}
	img.Transformation = fmt.Sprintf("c_limit,w_%d/%s", width, deliveryTransformation)
	return img.String()
}
