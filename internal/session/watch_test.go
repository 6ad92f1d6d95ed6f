package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileboxhq/filebox-go/internal/api"
)

func TestWatch_SeesExternalLogin(t *testing.T) {
	path := sessionPath(t)

	watching := Open(path, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Session, 8)
	done := make(chan error, 1)

	go func() {
		done <- watching.Watch(ctx, func(s Session) { changes <- s })
	}()

	// Give the watcher a moment to register before the external write.
	time.Sleep(100 * time.Millisecond)

	// A second process logs in against the same session file.
	other := Open(path, slog.Default())
	require.NoError(t, other.SetCredential("cred-external", &api.UserProfile{Username: "alice"}))

	select {
	case got := <-changes:
		assert.Equal(t, "cred-external", got.Credential)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never observed the external session write")
	}

	assert.Equal(t, "cred-external", watching.Get().Credential, "in-memory view must reload")

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_SeesExternalLogout(t *testing.T) {
	path := sessionPath(t)

	watching := Open(path, slog.Default())
	require.NoError(t, watching.SetCredential("cred", &api.UserProfile{Username: "alice"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Session, 8)

	go func() {
		_ = watching.Watch(ctx, func(s Session) { changes <- s })
	}()

	time.Sleep(100 * time.Millisecond)

	other := Open(path, slog.Default())
	require.NoError(t, other.Clear())

	deadline := time.After(5 * time.Second)

	for {
		select {
		case got := <-changes:
			if got.Anonymous() {
				assert.Empty(t, watching.Get().Credential)
				return
			}
		case <-deadline:
			t.Fatal("watcher never observed the external logout")
		}
	}
}
