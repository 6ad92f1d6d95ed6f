package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Sort keys and orders accepted by GET /files.
const (
	SortByDate = "date"
	SortBySize = "size"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListOptions are the server-side filter and sort parameters for
// GET /files. Zero-valued fields are omitted from the query string
// entirely — the server treats an absent parameter as "no filter".
type ListOptions struct {
	FileName string
	Username string
	Company  string
	FileType string
	DateFrom string // YYYY-MM-DD, passed through verbatim
	DateTo   string
	MinSize  int64 // bytes; <= 0 means unset
	MaxSize  int64
	SortBy   string // SortByDate or SortBySize
	Order    string // OrderAsc or OrderDesc
}

// query builds the URL query for the options, validating the closed
// sort/order vocabularies up front so a typo fails locally instead of as
// a confusing server-side 400.
func (o ListOptions) query() (url.Values, error) {
	switch o.SortBy {
	case "", SortByDate, SortBySize:
	default:
		return nil, fmt.Errorf("%w: sortBy must be %q or %q, got %q", ErrValidation, SortByDate, SortBySize, o.SortBy)
	}

	switch o.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return nil, fmt.Errorf("%w: order must be %q or %q, got %q", ErrValidation, OrderAsc, OrderDesc, o.Order)
	}

	q := url.Values{}

	setIf := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}

	setIf("fileName", o.FileName)
	setIf("username", o.Username)
	setIf("company", o.Company)
	setIf("fileType", o.FileType)
	setIf("dateFrom", o.DateFrom)
	setIf("dateTo", o.DateTo)

	if o.MinSize > 0 {
		q.Set("minSize", strconv.FormatInt(o.MinSize, 10))
	}

	if o.MaxSize > 0 {
		q.Set("maxSize", strconv.FormatInt(o.MaxSize, 10))
	}

	setIf("sortBy", o.SortBy)
	setIf("order", o.Order)

	return q, nil
}

// IsZero reports whether no filter or sort parameter is set, i.e. the
// listing is a full, unfiltered view of the store.
func (o ListOptions) IsZero() bool {
	return o == ListOptions{}
}

// fileListResponse wraps the data array from GET /files.
type fileListResponse struct {
	Data []File `json:"data"`
}

// List fetches the stored files matching the given filters, sorted
// server-side.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]File, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}

	path := "/files"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var flr fileListResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&flr); decErr != nil {
		return nil, fmt.Errorf("api: decoding file list response: %w", decErr)
	}

	c.logger.Debug("listed files", slog.Int("count", len(flr.Data)))

	return flr.Data, nil
}

// Delete removes a stored file. A 403 means the principal lacks
// permission for this file and surfaces as ErrForbidden with the
// server's explanation.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: file id is required", ErrValidation)
	}

	resp, err := c.Do(ctx, http.MethodDelete, "/files/"+url.PathEscape(fileID), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.logger.Info("deleted file", slog.String("file_id", fileID))

	return nil
}
