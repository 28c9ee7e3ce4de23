// Package imagehost uploads menu item photos to Cloudinary and returns the
// public URL stored on the item.
package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	// ErrNotImage is returned for uploads whose content type is not image/*.
	ErrNotImage = errors.New("only image uploads are allowed")
	// ErrTooLarge is returned for uploads above the size ceiling.
	ErrTooLarge = errors.New("image is too large")
	// ErrUploadFailed covers every failure reported by the image host.
	ErrUploadFailed = errors.New("upload failed")
)

// uploadTimeout bounds one call to the image host.
const uploadTimeout = 30 * time.Second

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// Cloudinary performs unsigned uploads with an upload preset.
type Cloudinary struct {
	UploadPreset string
	MaxBytes     int64

	cld *cloudinary.Cloudinary
}

// NewCloudinary builds a client for cloudName.  No API secret is needed
// since uploads go through an unsigned preset.
func NewCloudinary(cloudName, preset, apiKey string, maxBytes int64) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, "")
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &Cloudinary{UploadPreset: preset, MaxBytes: maxBytes, cld: cld}, nil
}

// SetUploadPrefix points the client at another API root.
func (c *Cloudinary) SetUploadPrefix(prefix string) {
	c.cld.Upload.Config.API.UploadPrefix = strings.TrimRight(prefix, "/")
}

// CheckContentType accepts image/* media types only.
func CheckContentType(contentType string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return ErrNotImage
	}
	return nil
}

// Upload validates the file locally, then hands it to Cloudinary.  Any
// failure after the local checks is reported as ErrUploadFailed.
func (c *Cloudinary) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := CheckContentType(contentType); err != nil {
		return "", err
	}
	limit := c.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrUploadFailed, filename, err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		UploadPreset: c.UploadPreset,
		Unsigned:     api.Bool(true),
	})
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: %s: %v", ErrUploadFailed, filename, err)
	case res == nil:
		return "", fmt.Errorf("%w: %s: empty response", ErrUploadFailed, filename)
	case res.Error.Message != "":
		return "", fmt.Errorf("%w: %s: %s", ErrUploadFailed, filename, res.Error.Message)
	case res.SecureURL == "":
		return "", fmt.Errorf("%w: %s: missing secure_url", ErrUploadFailed, filename)
	}
	return res.SecureURL, nil
}
