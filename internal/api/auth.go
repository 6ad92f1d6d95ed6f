package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginResponse mirrors the POST /auth/login JSON response. The user
// block is optional — some deployments only return the token and expect
// the client to follow up with GET /auth/me.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user,omitempty"`
}

// RegisterInput carries the fields forwarded verbatim to
// POST /auth/register. Field validation (password confirmation, required
// identity fields) happens in the session controller before this call.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Login exchanges a username and password for a bearer credential.
// Anonymous: no credential is attached and a 401 (bad password) does not
// touch the local session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	reqBody, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("api: marshaling login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(reqBody), reqOptions{anonymous: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var lr LoginResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&lr); decErr != nil {
		return nil, fmt.Errorf("api: decoding login response: %w", decErr)
	}

	if lr.Token == "" {
		return nil, fmt.Errorf("api: login response missing token")
	}

	return &lr, nil
}

// Register creates a new account. Success does not establish a session —
// the caller logs in separately.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("api: marshaling register request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/register", bytes.NewReader(reqBody), reqOptions{anonymous: true})
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

// Me fetches the profile of the authenticated principal.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var profile UserProfile
	if decErr := json.NewDecoder(resp.Body).Decode(&profile); decErr != nil {
		return nil, fmt.Errorf("api: decoding profile response: %w", decErr)
	}

	return &profile, nil
}
