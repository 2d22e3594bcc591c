package service

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/config"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/storage"
	"github.com/suteetoe/krist-shop/prometheus"
)

// ImageStore keeps uploaded images and returns their public URL
type ImageStore interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// ImageFile is one file taken from a multipart form
type ImageFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// UploadService checks images against the upload limits and forwards them to the image host
type UploadService struct {
	store   ImageStore
	limits  config.UploadConfig
	allowed map[string]bool
}

// NewUploadService creates a new upload service; store may be nil when no image host is configured
func NewUploadService(store ImageStore, limits config.UploadConfig) *UploadService {
	allowed := make(map[string]bool, len(limits.AllowedFormats))
	for _, f := range limits.AllowedFormats {
		allowed[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	return &UploadService{store: store, limits: limits, allowed: allowed}
}

func (s *UploadService) check(f ImageFile) error {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
	if !s.allowed[ext] {
		return apperror.BadRequestf("Only %s images are allowed.", strings.Join(s.limits.AllowedFormats, ", "))
	}
	if s.limits.MaxFileSize > 0 && f.Size > s.limits.MaxFileSize {
		return apperror.BadRequestf("File %s exceeds the %s limit.", f.Name, sizeLabel(s.limits.MaxFileSize))
	}
	return nil
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return strconv.FormatInt(n>>20, 10) + "MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

func (s *UploadService) put(ctx context.Context, f ImageFile) (string, error) {
	content, err := f.Open()
	if err != nil {
		return "", apperror.BadRequestf("Could not read %s.", f.Name)
	}
	defer content.Close()

	url, err := s.store.Upload(ctx, f.Name, content)
	if err != nil {
		return "", failure(ctx, "Failed to upload image", err, zap.String("filename", f.Name))
	}
	return url, nil
}

// Image uploads a single image
func (s *UploadService) Image(ctx context.Context, f ImageFile) (string, error) {
	urls, err := s.upload(ctx, []ImageFile{f})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// Images uploads between one and the configured maximum of images
func (s *UploadService) Images(ctx context.Context, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, apperror.BadRequest("No images were uploaded. Please select at least one image.")
	}
	if s.limits.MaxFiles > 0 && len(files) > s.limits.MaxFiles {
		return nil, apperror.BadRequestf("You can upload a maximum of %d images at a time.", s.limits.MaxFiles)
	}
	return s.upload(ctx, files)
}

func (s *UploadService) upload(ctx context.Context, files []ImageFile) ([]string, error) {
	for _, f := range files {
		if err := s.check(f); err != nil {
			prometheus.RecordUpload("rejected", len(files))
			return nil, err
		}
	}
	if s.store == nil {
		return nil, apperror.Internal("Image storage is not configured", storage.ErrNotConfigured)
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.put(ctx, f)
		if err != nil {
			prometheus.RecordUpload("error", len(files))
			return nil, err
		}
		urls = append(urls, url)
	}
	prometheus.RecordUpload("ok", len(files))
	logger.FromContext(ctx).Info("Images uploaded", zap.Int("count", len(urls)))
	return urls, nil
}

