package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/media"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 20 << 20

// UploadHandler serves /api/upload. Uploads get a longer deadline than
// other requests since the file is streamed on to the media provider.
type UploadHandler struct {
	Media media.Store
	Log   *zap.Logger
}

func NewUploadHandler(m media.Store, log *zap.Logger) *UploadHandler {
	return &UploadHandler{Media: m, Log: log.Named("upload")}
}

func allowedMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// Upload accepts a multipart "file" field and returns the stored asset.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}
	if fh.Size == 0 {
		return apperr.Validation("file is empty")
	}
	if fh.Size > MaxUploadBytes {
		return apperr.Validation("file exceeds 20MB")
	}
	if ct := fh.Header.Get(echo.HeaderContentType); !allowedMedia(ct) {
		return apperr.Validation("only image or video files are accepted")
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Internal("open upload", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()
	asset, err := h.Media.Upload(ctx, f, fh.Filename)
	if err != nil {
		return apperr.Internal("upload media", err)
	}
	return c.JSON(http.StatusCreated, asset)
}

func (h *UploadHandler) Destroy(c echo.Context) error {
	publicID := c.Param("*")
	if publicID == "" {
		return apperr.Validation("invalid publicId")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	if err := h.Media.Destroy(ctx, publicID); err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return apperr.NotFound("asset not found")
		}
		return apperr.Internal("destroy media", err)
	}
	h.Log.Info("asset removed", zap.String("public_id", publicID))
	return c.JSON(http.StatusOK, echo.Map{"message": "asset deleted"})
}

// MediaDisabled answers upload routes when no media provider is configured.
func MediaDisabled(c echo.Context) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "media uploads are not configured")
}
