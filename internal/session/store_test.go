package session

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileboxhq/filebox-go/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return Open(sessionPath(t), slog.Default())
}

func TestStore_SetCredentialAndGet(t *testing.T) {
	store := newTestStore(t)

	profile := &api.UserProfile{Username: "alice", Company: "Acme"}
	require.NoError(t, store.SetCredential("cred-abc", profile))

	got := store.Get()
	assert.Equal(t, "cred-abc", got.Credential)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "alice", got.Profile.Username)
	assert.Equal(t, "Acme", got.Profile.Company)
	assert.False(t, got.Anonymous())
}

func TestStore_ReplacementIsTotal(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetCredential("cred-1", &api.UserProfile{Username: "alice"}))
	require.NoError(t, store.SetCredential("cred-2", &api.UserProfile{Username: "bob"}))

	got := store.Get()
	assert.Equal(t, "cred-2", got.Credential)
	assert.Equal(t, "bob", got.Profile.Username)
}

func TestStore_NewCredentialWithoutProfileDropsOldProfile(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetCredential("cred-1", &api.UserProfile{Username: "alice"}))
	require.NoError(t, store.SetCredential("cred-2", nil))

	got := store.Get()
	assert.Equal(t, "cred-2", got.Credential)
	assert.Nil(t, got.Profile, "old principal's profile must not survive a credential swap")
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetCredential("cred", &api.UserProfile{Username: "alice"}))
	require.NoError(t, store.Clear())

	got := store.Get()
	assert.Empty(t, got.Credential)
	assert.Nil(t, got.Profile)

	// Idempotent: clearing an empty session is a no-op, not an error.
	require.NoError(t, store.Clear())
}

func TestStore_SetProfileRequiresCredential(t *testing.T) {
	store := newTestStore(t)

	// The documented stale-write race: a profile arriving after logout is
	// dropped, not an error and not a forbidden half-session.
	require.NoError(t, store.SetProfile(&api.UserProfile{Username: "ghost"}))

	got := store.Get()
	assert.Empty(t, got.Credential)
	assert.Nil(t, got.Profile)
}

func TestStore_SetProfile(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetCredential("cred", nil))
	require.NoError(t, store.SetProfile(&api.UserProfile{Username: "alice"}))

	got := store.Get()
	assert.Equal(t, "cred", got.Credential)
	assert.Equal(t, "alice", got.Profile.Username)
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := sessionPath(t)

	first := Open(path, slog.Default())
	require.NoError(t, first.SetCredential("cred-abc", &api.UserProfile{Username: "alice"}))

	second := Open(path, slog.Default())
	got := second.Get()
	assert.Equal(t, "cred-abc", got.Credential)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "alice", got.Profile.Username)
}

func TestStore_CorruptFileDegradesToAnonymous(t *testing.T) {
	path := sessionPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o600))

	store := Open(path, slog.Default())
	got := store.Get()
	assert.Empty(t, got.Credential)
	assert.Nil(t, got.Profile)
}

func TestStore_Invalidate(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetCredential("cred", &api.UserProfile{Username: "alice"}))

	store.Invalidate()

	assert.Empty(t, store.Credential())
	assert.Nil(t, store.Get().Profile)

	// Safe on an already-empty session.
	store.Invalidate()
	assert.Empty(t, store.Credential())
}

func TestStore_GetReturnsSnapshot(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetCredential("cred", &api.UserProfile{Username: "alice"}))

	snap := store.Get()
	snap.Profile.Username = "mutated"

	assert.Equal(t, "alice", store.Get().Profile.Username, "callers must not alias the store's profile")
}
