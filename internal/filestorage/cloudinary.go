package filestorage

import (
	"context"
	"fmt"
	"io"

	"property_connect_backend/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// cloudinaryTransformation caps images at 1200x1200 and lets Cloudinary pick the quality.
const cloudinaryTransformation = "c_limit,w_1200,h_1200,q_auto"

// CloudinaryStorage uploads images to a Cloudinary folder and returns their secure URLs.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

// NewCloudinaryStorage creates a client from the CLOUDINARY_* settings.
func NewCloudinaryStorage(cfg *config.Config, logger *zap.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	logger.Info("Cloudinary storage initialized", zap.String("cloud", cfg.CloudinaryCloudName), zap.String("folder", cfg.CloudinaryFolder))
	return &CloudinaryStorage{cld: cld, folder: cfg.CloudinaryFolder, logger: logger.Named("cloudinary_storage")}, nil
}

func (s *CloudinaryStorage) Backend() string { return "cloudinary" }

func (s *CloudinaryStorage) Save(ctx context.Context, filename, _ string, r io.Reader) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       objectName(filename),
		ResourceType:   "image",
		AllowedFormats: api.CldAPIArray{"jpg", "jpeg", "png", "gif", "webp"},
		Transformation: cloudinaryTransformation,
	})
	if err != nil {
		s.logger.Error("Cloudinary upload failed", zap.Error(err), zap.String("filename", filename))
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		s.logger.Error("Cloudinary rejected upload", zap.String("error", resp.Error.Message), zap.String("filename", filename))
		return "", fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
