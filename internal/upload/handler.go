// Package upload accepts listing images and hands them to the configured file storage.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/filestorage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const formField = "images"

// Rejection reasons reported per file.
const (
	ReasonTooLarge     = "File too large"
	ReasonInvalidType  = "Invalid file type. Only images are allowed."
	ReasonTooManyFiles = "Too many files"
)

var errPayloadTooLarge = common.NewAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload is too large.")

// RejectedFile explains why one file of the request was not stored.
type RejectedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Response lists the URLs of the stored files in request order.
type Response struct {
	URLs     []string       `json:"urls"`
	Rejected []RejectedFile `json:"rejected,omitempty"`
}

// Handler serves POST /upload.
type Handler struct {
	storage      filestorage.Storage
	maxFiles     int
	maxFileBytes int64
	logger       *zap.Logger
}

// NewHandler creates a new upload handler.
func NewHandler(storage filestorage.Storage, cfg *config.Config, logger *zap.Logger) *Handler {
	maxFiles := cfg.UploadMaxFiles
	if maxFiles <= 0 {
		maxFiles = 10
	}
	maxFileBytes := cfg.UploadMaxFileBytes
	if maxFileBytes <= 0 {
		maxFileBytes = 10 << 20
	}
	return &Handler{storage: storage, maxFiles: maxFiles, maxFileBytes: maxFileBytes, logger: logger.Named("upload")}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.POST("/upload", authMW, h.upload)
}

// bodyLimit caps the whole multipart body. It leaves room for one extra file plus 1MB of
// multipart framing, so an over-count request still gets per-file rejections.
func (h *Handler) bodyLimit() int64 {
	return int64(h.maxFiles+1)*h.maxFileBytes + 1<<20
}

func (h *Handler) upload(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit())

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondWithError(c, errPayloadTooLarge)
			return
		}
		h.logger.Warn("Invalid multipart upload", zap.Error(err), zap.String("userID", userID))
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("No files uploaded"))
		return
	}
	files := form.File[formField]
	if len(files) == 0 {
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("No files uploaded"))
		return
	}

	resp := Response{URLs: []string{}}
	for i, fh := range files {
		if i >= h.maxFiles {
			resp.Rejected = append(resp.Rejected, RejectedFile{Filename: fh.Filename, Reason: ReasonTooManyFiles})
			continue
		}
		url, reason, err := h.store(c, fh)
		if err != nil {
			h.logger.Error("Failed to store upload", zap.Error(err), zap.String("userID", userID),
				zap.String("filename", fh.Filename), zap.String("backend", h.storage.Backend()))
			common.RespondWithError(c, common.ErrInternalServer.WithMessage("Failed to upload images"))
			return
		}
		if reason != "" {
			resp.Rejected = append(resp.Rejected, RejectedFile{Filename: fh.Filename, Reason: reason})
			continue
		}
		resp.URLs = append(resp.URLs, url)
	}

	if len(resp.URLs) == 0 {
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("No valid images uploaded").WithDetails(resp.Rejected))
		return
	}

	h.logger.Info("Images uploaded", zap.String("userID", userID), zap.Int("stored", len(resp.URLs)),
		zap.Int("rejected", len(resp.Rejected)))
	common.RespondOK(c, resp)
}

// store validates one file and saves it. A non-empty reason means the file was rejected.
func (h *Handler) store(c *gin.Context, fh *multipart.FileHeader) (url, reason string, err error) {
	if fh.Size > h.maxFileBytes {
		return "", ReasonTooLarge, nil
	}
	declared := fh.Header.Get("Content-Type")
	if _, ok := filestorage.AllowedImageTypes[declared]; !ok {
		return "", ReasonInvalidType, nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if _, ok := filestorage.AllowedImageTypes[http.DetectContentType(head[:n])]; !ok {
		return "", ReasonInvalidType, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind %s: %w", fh.Filename, err)
	}

	url, err = h.storage.Save(c.Request.Context(), fh.Filename, declared, f)
	if err != nil {
		return "", "", err
	}
	return url, "", nil
}
