package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"golang.org/x/text/unicode/norm"
)

// multipartFieldName is the single form field the upload endpoints expect.
const multipartFieldName = "file"

// multipartBody streams a multipart form with a single file field. The
// writer side runs in a goroutine so the upload never buffers the whole
// file in memory; any encoding error is propagated through the pipe and
// surfaces as the request body error.
func multipartBody(fileName string, r io.Reader) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(multipartFieldName, fileName)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("api: creating multipart field: %w", err))
			return
		}

		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(fmt.Errorf("api: encoding file content: %w", err))
			return
		}

		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

// Upload stores a new file via POST /files/upload. The file name is
// NFC-normalized before transmission so the same name typed on macOS
// (NFD) and Linux (NFC) lands as one canonical spelling server-side.
func (c *Client) Upload(ctx context.Context, fileName string, r io.Reader) (*File, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	name := norm.NFC.String(fileName)

	c.logger.Info("uploading file", slog.String("file_name", name))

	body, contentType := multipartBody(name, r)
	defer body.Close()

	resp, err := c.do(ctx, http.MethodPost, "/files/upload", body, reqOptions{contentType: contentType})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var file File
	if decErr := json.NewDecoder(resp.Body).Decode(&file); decErr != nil {
		return nil, fmt.Errorf("api: decoding upload response: %w", decErr)
	}

	c.logger.Debug("upload complete",
		slog.String("file_id", file.ID),
		slog.String("file_name", file.FileName),
	)

	return &file, nil
}

// UploadVersion stores a new version of an existing file via
// POST /files/upload/version/{fileId}.
func (c *Client) UploadVersion(ctx context.Context, fileID, fileName string, r io.Reader) (*FileVersion, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", ErrValidation)
	}

	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	name := norm.NFC.String(fileName)

	c.logger.Info("uploading file version",
		slog.String("file_id", fileID),
		slog.String("file_name", name),
	)

	body, contentType := multipartBody(name, r)
	defer body.Close()

	path := "/files/upload/version/" + url.PathEscape(fileID)

	resp, err := c.do(ctx, http.MethodPost, path, body, reqOptions{contentType: contentType})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var version FileVersion
	if decErr := json.NewDecoder(resp.Body).Decode(&version); decErr != nil {
		return nil, fmt.Errorf("api: decoding version upload response: %w", decErr)
	}

	c.logger.Debug("version upload complete",
		slog.String("file_id", fileID),
		slog.Int("version", version.Version),
	)

	return &version, nil
}
