// Package session owns the client-side authentication state: the
// persisted (credential, profile) pair, the store that is the only code
// allowed to touch it, and the controller implementing the user-facing
// login/register/logout contract on top of the store and the API client.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/fileboxhq/filebox-go/internal/api"
)

// FilePerms restricts the session file to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the session directory.
const DirPerms = 0o700

// fileShape is the on-disk format of the session file: the two fixed
// keys "token" and "user". The credential is stored in an oauth2.Token
// container so the expiry decoded from the claims travels with it. The
// user block is kept raw so a corrupt profile can be discarded without
// losing the credential.
type fileShape struct {
	Token *oauth2.Token   `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

// load reads the session file. A missing file is an empty session, not
// an error. A corrupt profile entry is discarded and reported as nil —
// the credential survives. Only unreadable or structurally corrupt files
// return an error; callers degrade that to an empty session.
func load(path string) (*oauth2.Token, *api.UserProfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}

	if err != nil {
		return nil, nil, fmt.Errorf("session: reading %s: %w", path, err)
	}

	var sf fileShape
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("session: decoding %s: %w", path, err)
	}

	if sf.Token == nil || sf.Token.AccessToken == "" {
		// No credential means no session; a profile without a credential
		// is forbidden, so any stray user entry is dropped too.
		return nil, nil, nil
	}

	var profile *api.UserProfile

	if len(sf.User) > 0 {
		var p api.UserProfile
		if err := json.Unmarshal(sf.User, &p); err == nil {
			profile = &p
		}
	}

	return sf.Token, profile, nil
}

// save writes the session file atomically (write-to-temp + rename) with
// owner-only permissions. Never logs credential values.
func save(path string, tok *oauth2.Token, profile *api.UserProfile) error {
	sf := fileShape{Token: tok}

	if profile != nil {
		raw, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("session: encoding profile: %w", err)
		}

		sf.User = raw
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("session: creating directory %s: %w", dir, mkErr)
	}

	// Atomic write: temp file in the same directory, then rename.
	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("session: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("session: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("session: writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("session: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("session: renaming: %w", err)
	}

	success = true

	return nil
}

// remove deletes the session file. Removing an absent file is a no-op.
func remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: removing %s: %w", path, err)
	}

	return nil
}
