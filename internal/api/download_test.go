package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	content := []byte("raw binary \x00\x01 content")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/download/f1", r.URL.Path)
		assert.Equal(t, "Bearer cred", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{cred: "cred"})

	var buf bytes.Buffer

	n, err := client.Download(context.Background(), "f1", &buf)
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), n)
	assert.Equal(t, content, buf.Bytes())
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such file"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{cred: "cred"})

	var buf bytes.Buffer

	_, err := client.Download(context.Background(), "missing", &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Zero(t, buf.Len(), "no payload bytes on failure")
}

func TestDownload_EmptyID(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid", &fakeSession{})

	var buf bytes.Buffer

	_, err := client.Download(context.Background(), "", &buf)
	assert.ErrorIs(t, err, ErrValidation)
}
