// Package media stores uploaded images and videos with Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Destroy for an unknown public id.
var ErrNotFound = errors.New("media: asset not found")

// Asset describes a stored upload.
type Asset struct {
	PublicID     string `json:"publicId"`
	URL          string `json:"url"`
	ResourceType string `json:"resourceType"`
	Format       string `json:"format"`
	Bytes        int    `json:"bytes"`
}

// Store uploads and removes assets.
type Store interface {
	Upload(ctx context.Context, r io.Reader, filename string) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Cloudinary is a Store backed by a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *zap.Logger
}

func NewCloudinary(cloud, key, secret, folder string, log *zap.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloud, key, secret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder, log: log.Named("media")}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string) (Asset, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     PublicID(filename),
		ResourceType: "auto",
	})
	if err != nil {
		return Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return Asset{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	c.log.Info("asset uploaded", zap.String("public_id", res.PublicID), zap.Int("bytes", res.Bytes))
	return Asset{
		PublicID:     res.PublicID,
		URL:          res.SecureURL,
		ResourceType: res.ResourceType,
		Format:       res.Format,
		Bytes:        res.Bytes,
	}, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	if res.Result == "not found" {
		return ErrNotFound
	}
	c.log.Info("asset destroyed", zap.String("public_id", publicID))
	return nil
}

// PublicID derives a unique, URL-safe id from an uploaded file name.
func PublicID(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := slug.Make(base)
	if s == "" {
		s = "upload"
	}
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	return s + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
