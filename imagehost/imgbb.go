package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// HTTPHost uploads through the ImgBB multipart API.
type HTTPHost struct {
	APIKey    string
	UploadURL string
	HTTP      *http.Client
}

// NewHTTPHost creates an ImgBB host with a timeout-bound client.
func NewHTTPHost(apiKey, uploadURL string, timeout time.Duration) *HTTPHost {
	return &HTTPHost{
		APIKey:    apiKey,
		UploadURL: uploadURL,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

type imgbbResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (h *HTTPHost) Upload(ctx context.Context, img Upload) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("key", h.APIKey); err != nil {
		return "", err
	}
	filename := img.Filename
	if filename == "" {
		ext, _ := Extension(img.ContentType)
		filename = "image." + ext
	}
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.UploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	client := h.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	var parsed imgbbResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse upload response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Success || parsed.Data.URL == "" {
		return "", fmt.Errorf("image host rejected upload (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}

	log.Printf("File uploaded successfully: %s", parsed.Data.URL)
	return parsed.Data.URL, nil
}
