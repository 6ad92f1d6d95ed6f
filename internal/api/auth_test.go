package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "secret", body["password"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"token":"abc","user":{"username":"alice","company":"Acme"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{})

	lr, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "abc", lr.Token)
	require.NotNil(t, lr.User)
	assert.Equal(t, "alice", lr.User.Username)
	assert.Equal(t, "Acme", lr.User.Company)
}

func TestLogin_NoEchoedUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{})

	lr, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", lr.Token)
	assert.Nil(t, lr.User)
}

func TestLogin_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{})

	_, err := client.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
}

func TestLogin_BadPasswordDoesNotResetSession(t *testing.T) {
	var hadHeader bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadHeader = r.Header["Authorization"]
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	session := &fakeSession{cred: "existing"}
	client := newTestClient(t, srv.URL, session)

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	// Failing to log in is not the same as holding a stale credential:
	// the request goes out anonymous and the session is left alone.
	assert.False(t, hadHeader)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Zero(t, session.invalidations)
	assert.Equal(t, "existing", session.cred)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestRegister_ForwardsFieldsVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)

		var in RegisterInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "alice", in.Username)
		assert.Equal(t, "alice@acme.io", in.Email)
		assert.Equal(t, "Acme", in.Company)
		assert.Equal(t, "USER", in.Role)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"created"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{})

	err := client.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "secret",
		Email:    "alice@acme.io",
		Company:  "Acme",
		Role:     "USER",
	})
	require.NoError(t, err)
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer cred-123", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"username":"alice","email":"alice@acme.io","company":"Acme","role":"ADMIN"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{cred: "cred-123"})

	profile, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "ADMIN", profile.Role)
}
