package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("app-123", "key-abc", srv.URL, 5*time.Second)
}

func TestSendSuccess(t *testing.T) {
	var got map[string]any
	var auth, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"notif-1","recipients":2}`))
	})

	res, err := client.Send(context.Background(), Request{
		ExternalUserIDs: []string{"user-1"},
		Title:           "رد جديد",
		Body:            "تم الرد على شكواك",
		Data:            map[string]any{"complaintId": "c1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "notif-1", res.ID)
	assert.Equal(t, 2, res.Recipients)
	assert.Contains(t, auth, "key-abc")
	assert.Equal(t, "/notifications", path)
	assert.Equal(t, "app-123", got["app_id"])
	assert.Equal(t, []any{"user-1"}, got["include_external_user_ids"])
	assert.NotContains(t, got, "include_player_ids")
	assert.Equal(t, map[string]any{"en": "رد جديد", "ar": "رد جديد"}, got["headings"])
	assert.Equal(t, map[string]any{"complaintId": "c1"}, got["data"])
}

func TestSendNon2xxIsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":["app_id not found"]}`))
	})

	_, err := client.Send(context.Background(), Request{ExternalUserIDs: []string{"u"}, Title: "t", Body: "b"})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "app_id not found")
}

func TestSendErrorListWith200IsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"","recipients":0,"errors":{"invalid_external_user_ids":["u"]}}`))
	})

	_, err := client.Send(context.Background(), Request{ExternalUserIDs: []string{"u"}, Title: "t", Body: "b"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestSendEmptyErrorListIsSuccess(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"n","recipients":1,"errors":[]}`))
	})

	res, err := client.Send(context.Background(), Request{PlayerIDs: []string{"device"}, Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Recipients)
	assert.Equal(t, []any{"device"}, got["include_player_ids"])
}

func TestSendWithoutRecipientsMakesNoCall(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Send(context.Background(), Request{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.False(t, called)
}

func TestHasErrors(t *testing.T) {
	assert.False(t, hasErrors(nil))
	assert.False(t, hasErrors(json.RawMessage(`null`)))
	assert.False(t, hasErrors(json.RawMessage(`[]`)))
	assert.False(t, hasErrors(json.RawMessage(`{}`)))
	assert.True(t, hasErrors(json.RawMessage(`["x"]`)))
	assert.True(t, hasErrors(json.RawMessage(`{"invalid_player_ids":["x"]}`)))
}

func TestSendTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient("app-123", "key-abc", url, time.Second)
	_, err := client.Send(context.Background(), Request{ExternalUserIDs: []string{"u"}, Title: "t", Body: "b"})

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
