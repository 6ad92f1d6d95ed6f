package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fileboxhq/filebox-go/internal/api"
	"github.com/fileboxhq/filebox-go/internal/token"
)

// AuthAPI is the slice of the API client the controller drives. The api
// package's Client satisfies it; tests substitute fakes.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, in api.RegisterInput) error
	Me(ctx context.Context) (*api.UserProfile, error)
}

// Registration is the input to Controller.Register. ConfirmPassword is
// checked locally and never leaves the process.
type Registration struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	Company         string
	Role            string
}

// Controller implements the user-facing authentication contract on top
// of the store and the API client: login, register, logout, "am I
// authenticated", "who is the current user".
type Controller struct {
	store  *Store
	client AuthAPI
	logger *slog.Logger

	// now is the clock used for expiry checks. Tests override it.
	now func() time.Time
}

// NewController wires a controller to its store and API client.
func NewController(store *Store, client AuthAPI, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		store:  store,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Login authenticates and establishes the session. Empty fields fail
// locally with api.ErrValidation before any network call. On success the
// credential is stored together with the profile: the one echoed by the
// server, or fetched from /auth/me, or — when both are unavailable — a
// minimal profile synthesized from the submitted username so the session
// is never left without one. On any login failure the session is left
// exactly as it was.
func (c *Controller) Login(ctx context.Context, username, password string) (*api.UserProfile, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", api.ErrValidation)
	}

	lr, err := c.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if lr.User != nil {
		if err := c.store.SetCredential(lr.Token, lr.User); err != nil {
			return nil, err
		}

		c.logger.Info("login successful", slog.String("username", lr.User.Username))

		return lr.User, nil
	}

	// Credential first, so the profile follow-up goes out authenticated.
	if err := c.store.SetCredential(lr.Token, nil); err != nil {
		return nil, err
	}

	profile, meErr := c.client.Me(ctx)
	if meErr != nil {
		c.logger.Warn("profile fetch after login failed, synthesizing from input",
			slog.String("error", meErr.Error()),
		)

		profile = &api.UserProfile{Username: username}
	}

	if err := c.store.SetProfile(profile); err != nil {
		return nil, err
	}

	c.logger.Info("login successful", slog.String("username", profile.Username))

	return profile, nil
}

// Register creates an account. All validation happens before any network
// call; the remaining fields are forwarded verbatim. Success does not
// establish a session — the caller logs in separately.
func (c *Controller) Register(ctx context.Context, in Registration) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Password == "" || in.Email == "" {
		return fmt.Errorf("%w: username, password and email are required", api.ErrValidation)
	}

	if in.Password != in.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", api.ErrValidation)
	}

	err := c.client.Register(ctx, api.RegisterInput{
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
		Company:  in.Company,
		Role:     in.Role,
	})
	if err != nil {
		return err
	}

	c.logger.Info("registration successful", slog.String("username", in.Username))

	return nil
}

// Logout clears the session unconditionally. Idempotent.
func (c *Controller) Logout() error {
	if err := c.store.Clear(); err != nil {
		return err
	}

	c.logger.Info("logged out")

	return nil
}

// CurrentUser returns the cached profile, or nil when anonymous.
func (c *Controller) CurrentUser() *api.UserProfile {
	return c.store.Get().Profile
}

// IsAuthenticated reports whether a credential is present and not expired
// per its claims. Detection is lazy — checked here at the point of use,
// never by a background timer; a 401 from any call remains the
// authoritative backstop.
func (c *Controller) IsAuthenticated() bool {
	cred := c.store.Get().Credential
	if cred == "" {
		return false
	}

	return !token.IsExpiredAt(cred, c.now())
}
