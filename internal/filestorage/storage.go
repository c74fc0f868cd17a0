// Package filestorage stores uploaded listing images on local disk or in Cloudinary.
package filestorage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"property_connect_backend/internal/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Storage persists one image and returns the URL clients should use for it.
type Storage interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (url string, err error)
	Backend() string
}

// AllowedImageTypes lists the accepted upload MIME types and their file extensions.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// objectName builds a unique, URL-safe name such as "3f2c...-sea-view-villa".
// The extension is not included.
func objectName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := slug.Make(base)
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	if s == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "-" + s
}

// extensionFor returns the extension for the content type, falling back to the file name.
func extensionFor(filename, contentType string) string {
	if ext, ok := AllowedImageTypes[contentType]; ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(filename))
}

// NewStorage returns Cloudinary storage when its credentials are configured, else disk storage.
func NewStorage(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	if cfg.CloudinaryEnabled() {
		s, err := NewCloudinaryStorage(cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewDiskStorage(cfg.UploadDir, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}
