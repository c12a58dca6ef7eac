// Package rest reads items from, and commits reschedules to, the content
// dashboard's HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
)

// DefaultTimeout bounds every request when no client is supplied.
const DefaultTimeout = 15 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	PageSize   int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements source.Source over HTTP.
type Client struct {
	base     *url.URL
	token    string
	pageSize int
	http     *http.Client
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("%w: api base URL is empty", source.ErrValidation)
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid api base URL %q", source.ErrValidation, opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{base: base, token: opts.Token, pageSize: opts.PageSize, http: hc}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type listResponse struct {
	Items []item.Item `json:"items"`
}

type rescheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
}

type itemResponse struct {
	Item item.Item `json:"item"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// List fetches items, passing the range and kinds as query hints.
func (c *Client) List(ctx context.Context, opts source.ListOptions) ([]item.Item, error) {
	q := url.Values{}
	if len(opts.Kinds) > 0 {
		kinds := make([]string, len(opts.Kinds))
		for i, k := range opts.Kinds {
			kinds[i] = string(k)
		}
		q.Set("kinds", strings.Join(kinds, ","))
	}
	if opts.Start != nil {
		q.Set("start", opts.Start.Format("2006-01-02"))
	}
	if opts.End != nil {
		q.Set("end", opts.End.Format("2006-01-02"))
	}
	limit := opts.Limit
	if limit == 0 {
		limit = c.pageSize
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/items", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		resp.Items = []item.Item{}
	}
	return resp.Items, nil
}

// Get fetches one item regardless of the list page size.
func (c *Client) Get(ctx context.Context, ref item.Ref) (item.Item, error) {
	var resp itemResponse
	if err := c.do(ctx, http.MethodGet, itemPath(ref), nil, nil, &resp); err != nil {
		return item.Item{}, err
	}
	return resp.Item, nil
}

func itemPath(ref item.Ref) string {
	return "/api/items/" + url.PathEscape(string(ref.Kind)) + "/" + url.PathEscape(ref.ID)
}

// Reschedule posts the new schedule for ref.
func (c *Client) Reschedule(ctx context.Context, ref item.Ref, newDate time.Time) (item.Item, error) {
	body := rescheduleRequest{ScheduledAt: item.FormatTimestamp(newDate)}
	path := itemPath(ref) + "/reschedule"

	var resp itemResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return item.Item{}, err
	}
	return resp.Item, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", source.ErrValidation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", source.ErrLoad, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", source.ErrLoad, method, path, err)
	}
	defer resp.Body.Close()
	slog.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 300 {
		return statusError(method, path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", source.ErrLoad, path, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var er errorResponse
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			msg = er.Error
		}
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = source.ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		kind = source.ErrRejected
	case http.StatusBadRequest:
		kind = source.ErrValidation
	default:
		kind = source.ErrLoad
	}
	return fmt.Errorf("%w: %s %s: %d %s", kind, method, path, resp.StatusCode, msg)
}

// IsUnreachable reports whether err means the API could not be reached or
// answered with a server error.
func IsUnreachable(err error) bool {
	return errors.Is(err, source.ErrLoad)
}
