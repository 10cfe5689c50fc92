package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	MaxImageBytes = 10 << 20 // 10MB
	imageFolder   = "evofit/posts"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	result, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// ImageService accepts post images. Without an uploader every call
// returns ErrUploadUnavailable.
type ImageService struct {
	uploader ImageUploader
}

func NewImageService(u ImageUploader) *ImageService {
	return &ImageService{uploader: u}
}

func (s *ImageService) Enabled() bool {
	return s.uploader != nil
}

// Upload reads at most MaxImageBytes from r, checks that the content
// sniffs as an image and returns the hosted URL.
func (s *ImageService) Upload(ctx context.Context, r io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadUnavailable
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return "", invalidInput("file is empty")
	}
	if len(data) > MaxImageBytes {
		return "", invalidInput("file exceeds the 10MB limit")
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", invalidInput("only image files can be uploaded")
	}

	return s.uploader.Upload(ctx, data, imageFolder)
}
