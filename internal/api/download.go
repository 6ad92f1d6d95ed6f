package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Download streams the content of a stored file to the given writer and
// returns the number of bytes written. The body is a raw binary stream,
// not a JSON envelope.
func (c *Client) Download(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	if fileID == "" {
		return 0, fmt.Errorf("%w: file id is required", ErrValidation)
	}

	c.logger.Info("downloading file", slog.String("file_id", fileID))

	resp, err := c.Do(ctx, http.MethodGet, "/files/download/"+url.PathEscape(fileID), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, copyErr := io.Copy(w, resp.Body)
	if copyErr != nil {
		c.logger.Error("streaming download content failed",
			slog.String("file_id", fileID),
			slog.Int64("bytes_before_error", n),
			slog.String("error", copyErr.Error()),
		)

		return n, fmt.Errorf("api: streaming download content: %w", copyErr)
	}

	c.logger.Debug("download complete",
		slog.String("file_id", fileID),
		slog.Int64("bytes_written", n),
	)

	return n, nil
}
