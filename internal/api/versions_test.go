package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/versions/f1", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[
			{"id":"v2","version":2,"fileName":"report.pdf","fileSize":2100,"uploaderUsername":"bob","uploadDate":"2026-03-05T09:00:00Z"},
			{"id":"v1","version":1,"fileName":"report.pdf","fileSize":2048,"uploaderUsername":"alice","uploadDate":"2026-03-01T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{cred: "cred"})

	versions, err := client.Versions(context.Background(), "f1")
	require.NoError(t, err)

	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, "bob", versions[0].UploaderUsername)
	assert.Equal(t, 1, versions[1].Version)
}

func TestVersions_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{cred: "cred"})

	versions, err := client.Versions(context.Background(), "f1")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestVersions_EmptyID(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid", &fakeSession{})

	_, err := client.Versions(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}
