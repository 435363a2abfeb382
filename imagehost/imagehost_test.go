package imagehost

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elsahm-admin/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	const maxBytes = 5 << 20
	tests := []struct {
		name  string
		img   Upload
		valid bool
	}{
		{"jpeg", Upload{ContentType: "image/jpeg", Data: []byte{1}}, true},
		{"png uppercase", Upload{ContentType: "IMAGE/PNG", Data: []byte{1}}, true},
		{"gif", Upload{ContentType: "image/gif", Data: []byte{1}}, true},
		{"webp", Upload{ContentType: "image/webp", Data: []byte{1}}, true},
		{"exactly max", Upload{ContentType: "image/png", Data: make([]byte, maxBytes)}, true},
		{"pdf", Upload{ContentType: "application/pdf", Data: []byte{1}}, false},
		{"svg", Upload{ContentType: "image/svg+xml", Data: []byte{1}}, false},
		{"too large", Upload{ContentType: "image/png", Data: make([]byte, maxBytes+1)}, false},
		{"empty", Upload{ContentType: "image/png"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.img, maxBytes)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestHTTPHostUpload(t *testing.T) {
	var gotKey string
	var gotImage []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotKey = r.FormValue("key")
		f, _, err := r.FormFile("image")
		if assert.NoError(t, err) {
			gotImage, _ = io.ReadAll(f)
		}
		_, _ = w.Write([]byte(`{"data":{"url":"https://i.ibb.co/x/reply.png"},"success":true,"status":200}`))
	}))
	defer srv.Close()

	host := NewHTTPHost("imgbb-key", srv.URL, 5*time.Second)
	url, err := host.Upload(context.Background(), Upload{ContentType: "image/png", Data: []byte("png-bytes")})

	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/x/reply.png", url)
	assert.Equal(t, "imgbb-key", gotKey)
	assert.Equal(t, []byte("png-bytes"), gotImage)
}

func TestHTTPHostRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"status":400,"error":{"message":"Invalid API v1 key."}}`))
	}))
	defer srv.Close()

	host := NewHTTPHost("bad", srv.URL, 5*time.Second)
	_, err := host.Upload(context.Background(), Upload{ContentType: "image/png", Data: []byte("x")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API v1 key.")
}

type stubHost struct {
	url   string
	err   error
	calls int
}

func (s *stubHost) Upload(ctx context.Context, img Upload) (string, error) {
	s.calls++
	return s.url, s.err
}

func TestFallback(t *testing.T) {
	img := Upload{ContentType: "image/png", Data: []byte("x")}

	t.Run("primary succeeds", func(t *testing.T) {
		primary := &stubHost{url: "https://primary/1.png"}
		secondary := &stubHost{url: "https://secondary/1.png"}
		url, err := (&Fallback{Primary: primary, Secondary: secondary}).Upload(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, "https://primary/1.png", url)
		assert.Equal(t, 0, secondary.calls)
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &stubHost{err: errors.New("gcs down")}
		secondary := &stubHost{url: "https://secondary/1.png"}
		url, err := (&Fallback{Primary: primary, Secondary: secondary}).Upload(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, "https://secondary/1.png", url)
	})

	t.Run("both fail", func(t *testing.T) {
		primary := &stubHost{err: errors.New("gcs down")}
		secondary := &stubHost{err: errors.New("imgbb down")}
		_, err := (&Fallback{Primary: primary, Secondary: secondary}).Upload(context.Background(), img)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gcs down")
		assert.Contains(t, err.Error(), "imgbb down")
	})

	t.Run("no primary configured", func(t *testing.T) {
		secondary := &stubHost{url: "https://secondary/2.png"}
		url, err := (&Fallback{Secondary: secondary}).Upload(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, "https://secondary/2.png", url)
	})

	t.Run("no host configured", func(t *testing.T) {
		_, err := (&Fallback{}).Upload(context.Background(), img)
		assert.ErrorIs(t, err, ErrNoHost)
	})
}
