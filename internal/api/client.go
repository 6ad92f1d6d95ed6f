package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const userAgent = "filebox-go/0.1"

// SessionState is the slice of the session layer the client needs: read
// the current credential before each request, and invalidate the session
// when the server says the credential is no longer good. Defined at the
// consumer per Go convention "accept interfaces, return structs"; the
// session package provides the real implementation.
type SessionState interface {
	// Credential returns the current bearer credential, or "" when the
	// session is anonymous.
	Credential() string

	// Invalidate clears the persisted session. Called exactly once per
	// 401 response. Must be safe to call on an already-empty session.
	Invalidate()
}

// Client is an HTTP client for the Filebox API. It attaches the session
// credential to outbound requests, tags each request with an ID, and
// normalizes every response into either a decoded payload or an APIError
// wrapping one of the package sentinels. It performs no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    SessionState
	logger     *slog.Logger
}

// NewClient creates a Filebox API client. session may be nil for a client
// that only issues anonymous requests.
func NewClient(baseURL string, httpClient *http.Client, session SessionState, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		session:    session,
		logger:     logger,
	}
}

// reqOptions tweaks per-request behavior of do().
type reqOptions struct {
	// anonymous requests never attach a credential, and a 401 does not
	// reset the session: failing to log in is not the same as holding a
	// stale credential.
	anonymous bool

	// contentType overrides the default application/json for non-nil
	// bodies (multipart uploads set their boundary-bearing type here).
	contentType string
}

// Do executes a JSON request against the API. The path is appended to the
// client's base URL. For non-nil bodies, Content-Type is application/json.
// On success the caller owns the response body and must close it. On any
// failure the returned error is an APIError (or wraps ErrNetwork) and no
// response is returned.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	return c.do(ctx, method, path, body, reqOptions{})
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, opts reqOptions) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("User-Agent", userAgent)

	if body != nil {
		ct := opts.contentType
		if ct == "" {
			ct = "application/json"
		}

		req.Header.Set("Content-Type", ct)
	}

	// Attach the credential iff one exists. Never send an empty or
	// placeholder Authorization header.
	if !opts.anonymous && c.session != nil {
		if cred := c.session.Credential(); cred != "" {
			req.Header.Set("Authorization", "Bearer "+cred)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed at transport",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)

		return nil, &APIError{RequestID: requestID, Message: err.Error(), Err: ErrNetwork}
	}

	// 2xx — success. Caller decodes and closes the body.
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("request_id", requestID),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = nil
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.anonymous {
		// The credential is no longer good. Clear the session once, here,
		// so the next call fails fast locally instead of repeating the
		// doomed request. Not a retry loop: the failure still propagates.
		if c.session != nil {
			c.session.Invalidate()
		}

		c.logger.Warn("credential rejected, session cleared",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
		)
	}

	sentinel := classifyStatus(resp.StatusCode)
	if opts.anonymous && resp.StatusCode == http.StatusUnauthorized {
		sentinel = ErrRequestFailed
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
		Message:    serverMessage(errBody, resp.StatusCode),
		Err:        sentinel,
	}

	c.logger.Debug("request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
	)

	return nil, apiErr
}
