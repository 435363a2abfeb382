package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSHost writes images into a public Google Cloud Storage bucket.
type GCSHost struct {
	Client *storage.Client
	Bucket string
	Folder string
}

func (h *GCSHost) Upload(ctx context.Context, img Upload) (string, error) {
	extension, ok := Extension(img.ContentType)
	if !ok {
		return "", fmt.Errorf("unsupported content type: %s", img.ContentType)
	}

	// UUID + Nano timestamp เพื่อให้ชื่อไฟล์ไม่ซ้ำ
	objectName := fmt.Sprintf("%s/%s_%d.%s", h.Folder, uuid.NewString(), time.Now().UnixNano(), extension)
	log.Printf("Uploading file to bucket: %s, object: %s", h.Bucket, objectName)

	writer := h.Client.Bucket(h.Bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = img.ContentType

	if _, err := io.Copy(writer, bytes.NewReader(img.Data)); err != nil {
		_ = writer.Close()
		log.Printf("Failed to copy file to GCS: %v", err)
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		log.Printf("Failed to close writer: %v", err)
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.Bucket, objectName)
	log.Printf("File uploaded successfully: %s", publicURL)
	return publicURL, nil
}
