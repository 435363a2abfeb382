package gcs

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewClient เชื่อมต่อ Google Cloud Storage. An empty credentialsFile falls
// back to application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Google Cloud Storage: %w", err)
	}
	log.Println("Connected to Google Cloud Storage")
	return client, nil
}

// CheckBucket ตรวจสอบ bucket ว่าพร้อมใช้งาน
func CheckBucket(ctx context.Context, client *storage.Client, bucket string) error {
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("cannot access bucket %s: %w", bucket, err)
	}
	log.Printf("Bucket %s is ready", bucket)
	return nil
}
