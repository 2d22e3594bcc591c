// Package storage uploads images to the configured image host.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/suteetoe/krist-shop/pkg/config"
)

// ErrNotConfigured is returned when no image host credentials are set
var ErrNotConfigured = errors.New("image storage is not configured")

// Cloudinary uploads images into one folder of a Cloudinary account
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary creates an uploader; it fails when the credentials are incomplete
func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

// Upload stores the content and returns its public HTTPS URL
func (c *Cloudinary) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     PublicID(filename),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", filename, resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// PublicID derives a unique, URL-safe asset name from the original filename
func PublicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		return uuid.NewString()
	}
	return base + "-" + uuid.NewString()[:8]
}
