package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// versionListResponse wraps the data array from GET /files/versions/{fileId}.
type versionListResponse struct {
	Data []FileVersion `json:"data"`
}

// Versions fetches the version history of a stored file, newest first as
// ordered by the server.
func (c *Client) Versions(ctx context.Context, fileID string) ([]FileVersion, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", ErrValidation)
	}

	resp, err := c.Do(ctx, http.MethodGet, "/files/versions/"+url.PathEscape(fileID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var vlr versionListResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&vlr); decErr != nil {
		return nil, fmt.Errorf("api: decoding version list response: %w", decErr)
	}

	c.logger.Debug("listed versions",
		slog.String("file_id", fileID),
		slog.Int("count", len(vlr.Data)),
	)

	return vlr.Data, nil
}
