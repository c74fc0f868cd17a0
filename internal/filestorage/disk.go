package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// PublicUploadsPath is the URL prefix under which DiskStorage files are served.
const PublicUploadsPath = "/uploads"

// DiskStorage writes files into a single local directory.
type DiskStorage struct {
	dir    string
	logger *zap.Logger
}

// NewDiskStorage creates the directory if needed.
func NewDiskStorage(dir string, logger *zap.Logger) (*DiskStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Failed to create upload directory", zap.String("path", dir), zap.Error(err))
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	logger.Info("Disk storage initialized", zap.String("dir", dir))
	return &DiskStorage{dir: dir, logger: logger.Named("disk_storage")}, nil
}

// Dir returns the directory files are written to.
func (s *DiskStorage) Dir() string { return s.dir }

func (s *DiskStorage) Backend() string { return "disk" }

func (s *DiskStorage) Save(_ context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := objectName(filename) + extensionFor(filename, contentType)
	destinationPath := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(destinationPath)
		s.logger.Error("Failed to write uploaded file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Debug("File saved", zap.String("path", destinationPath))
	return PublicUploadsPath + "/" + name, nil
}
