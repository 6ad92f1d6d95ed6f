package session

import (
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/fileboxhq/filebox-go/internal/api"
	"github.com/fileboxhq/filebox-go/internal/token"
)

// Session is the current (credential, profile) pair. Exactly one exists
// per store; an empty Credential means the session is anonymous.
type Session struct {
	Credential string
	Profile    *api.UserProfile
}

// Anonymous reports whether no credential is held.
func (s Session) Anonymous() bool {
	return s.Credential == ""
}

// Store is the single owner of the persisted session state. All reads
// and writes go through it; no other code touches the session file. Every
// operation is synchronous and non-suspending, so a reader can never
// observe a half-updated session: the file write happens first, and the
// in-memory view flips only after it succeeds.
//
// Each process holds its own in-memory view backed by the same file, so
// cross-process consistency is best-effort (see Watch).
type Store struct {
	path   string
	logger *slog.Logger

	mu  sync.Mutex
	cur Session
}

// Open creates a store backed by the session file at path, loading any
// persisted session. A corrupt file degrades to an empty session with a
// warning — never an error surfaced to the caller.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{path: path, logger: logger}
	s.mu.Lock()
	s.reloadLocked()
	s.mu.Unlock()

	return s
}

// Path returns the session file path (for watchers and diagnostics).
func (s *Store) Path() string {
	return s.path
}

// Get returns a snapshot of the current session.
func (s *Store) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// SetCredential replaces the stored credential, and the profile alongside
// it when one is supplied. The pair is written in a single atomic file
// write: on storage failure neither lands and the previous session
// remains intact.
func (s *Store) SetCredential(credential string, profile *api.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := &oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	}

	// Carry the expiry from the claims when the credential is readable.
	// An unreadable credential is still stored — the server issued it —
	// but IsExpiredAt will conservatively report it expired.
	if claims, err := token.Decode(credential); err == nil {
		tok.Expiry = claims.ExpiresAt
	}

	if profile == nil {
		profile = s.cur.Profile
		if !s.cur.Anonymous() && s.cur.Credential != credential {
			// New principal, old profile no longer applies.
			profile = nil
		}
	}

	if err := save(s.path, tok, profile); err != nil {
		return err
	}

	s.cur = Session{Credential: credential, Profile: profile}

	return nil
}

// SetProfile updates the cached profile for the current credential. A
// profile write against an anonymous session is dropped silently: this is
// the documented stale-write race (a profile fetch completing after
// logout), accepted safely rather than violating the invariant that a
// profile never exists without a credential.
func (s *Store) SetProfile(profile *api.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur.Anonymous() {
		s.logger.Debug("dropping profile write against anonymous session")
		return nil
	}

	tok := &oauth2.Token{
		AccessToken: s.cur.Credential,
		TokenType:   "Bearer",
	}

	if claims, err := token.Decode(s.cur.Credential); err == nil {
		tok.Expiry = claims.ExpiresAt
	}

	if err := save(s.path, tok, profile); err != nil {
		return err
	}

	s.cur.Profile = profile

	return nil
}

// Clear removes both credential and profile unconditionally. Idempotent:
// clearing an already-empty session is a no-op, not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := remove(s.path); err != nil {
		return err
	}

	s.cur = Session{}

	return nil
}

// Credential implements api.SessionState.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cur.Credential
}

// Invalidate implements api.SessionState: the API client calls it once
// when the server rejects the credential with a 401. Removal failures are
// logged, not propagated — the in-memory session is cleared regardless so
// subsequent calls fail fast as anonymous.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := remove(s.path); err != nil {
		s.logger.Warn("clearing rejected session file failed", slog.String("error", err.Error()))
	}

	s.cur = Session{}
}

// Reload re-reads the session file into the in-memory view. Used by the
// cross-process watcher; safe to call at any time.
func (s *Store) Reload() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reloadLocked()

	return s.snapshotLocked()
}

func (s *Store) reloadLocked() {
	tok, profile, err := load(s.path)
	if err != nil {
		// Corrupt state degrades to an empty session; the next successful
		// login overwrites the file.
		s.logger.Warn("session file unreadable, starting anonymous", slog.String("error", err.Error()))
		s.cur = Session{}

		return
	}

	if tok == nil {
		s.cur = Session{}
		return
	}

	s.cur = Session{Credential: tok.AccessToken, Profile: profile}
}

func (s *Store) snapshotLocked() Session {
	snap := Session{Credential: s.cur.Credential}

	if s.cur.Profile != nil {
		p := *s.cur.Profile
		snap.Profile = &p
	}

	return snap
}
