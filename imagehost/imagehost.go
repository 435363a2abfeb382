// Package imagehost uploads reply images to a public image host.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"elsahm-admin/apperr"
)

// Upload is an image received from the console.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// Host stores an image and returns its public URL.
type Host interface {
	Upload(ctx context.Context, img Upload) (string, error)
}

// allowedTypes maps accepted MIME types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Extension returns the file extension for an accepted content type.
func Extension(contentType string) (string, bool) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// Validate rejects images outside {jpeg, png, gif, webp} or above maxBytes.
func Validate(img Upload, maxBytes int64) error {
	if _, ok := Extension(img.ContentType); !ok {
		return apperr.NewValidationError("image", "نوع الملف غير مدعوم، الأنواع المسموحة: JPEG, PNG, GIF, WEBP")
	}
	if img.Size() == 0 {
		return apperr.NewValidationError("image", "الملف فارغ")
	}
	if img.Size() > maxBytes {
		return apperr.NewValidationError("image", fmt.Sprintf("حجم الملف يتجاوز الحد الأقصى (%d ميجابايت)", maxBytes>>20))
	}
	return nil
}

// ErrNoHost is returned by a Fallback with neither host configured.
var ErrNoHost = errors.New("imagehost: no image host configured")

// Fallback tries Primary first and Secondary when Primary fails.
type Fallback struct {
	Primary   Host
	Secondary Host
}

func (f *Fallback) Upload(ctx context.Context, img Upload) (string, error) {
	if f.Primary == nil && f.Secondary == nil {
		return "", ErrNoHost
	}
	if f.Primary == nil {
		return f.Secondary.Upload(ctx, img)
	}
	url, err := f.Primary.Upload(ctx, img)
	if err == nil {
		return url, nil
	}
	if f.Secondary == nil {
		return "", err
	}
	log.Printf("Primary image host failed, trying fallback: %v", err)
	url, err2 := f.Secondary.Upload(ctx, img)
	if err2 != nil {
		return "", fmt.Errorf("all image hosts failed: %v; %w", err, err2)
	}
	return url, nil
}
