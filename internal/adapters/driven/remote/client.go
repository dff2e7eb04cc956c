package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RemoteAPI = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// HeaderIdempotencyKey carries a pending operation's key on replays.
	HeaderIdempotencyKey = "Idempotency-Key"

	// maxErrorBody bounds how much of an error response is kept in StatusError.
	maxErrorBody = 512
)

// Config configures the REST client.
type Config struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	// Transport overrides the underlying round tripper. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the backend collection endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  *TokenSource
	limiter *RateLimiter
}

// NewClient creates a REST client for cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", domain.ErrInvalidInput, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: base url %q must be http or https", domain.ErrInvalidInput, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tokens := NewTokenSource(cfg.Token)
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: newAuthTransport(tokens, cfg.Transport),
		},
		tokens:  tokens,
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// SetToken swaps the bearer token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.tokens.SetToken(token)
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Create POSTs data to /{resource}/ and returns the created record.
func (c *Client) Create(
	ctx context.Context, resource domain.Resource, data domain.Fields, opts ...driven.RequestOption,
) (domain.Fields, error) {
	var out domain.Fields
	err := c.do(ctx, http.MethodPost, c.collectionURL(resource), data, &out, driven.ApplyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update PUTs data to /{resource}/{id} and returns the updated record.
func (c *Client) Update(
	ctx context.Context, resource domain.Resource, id int64, data domain.Fields, opts ...driven.RequestOption,
) (domain.Fields, error) {
	var out domain.Fields
	err := c.do(ctx, http.MethodPut, c.itemURL(resource, id), data, &out, driven.ApplyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete sends DELETE to /{resource}/{id}.
func (c *Client) Delete(ctx context.Context, resource domain.Resource, id int64, opts ...driven.RequestOption) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(resource, id), nil, nil, driven.ApplyRequestOptions(opts...))
}

// List GETs /{resource}/. Both bare arrays and paginated {"results": [...]}
// envelopes are accepted.
func (c *Client) List(ctx context.Context, resource domain.Resource) ([]domain.Fields, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.collectionURL(resource), nil, &raw, driven.RequestOptions{}); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

// Ping issues a GET against path relative to the base URL. Any HTTP response
// means the backend is reachable.
func (c *Client) Ping(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) collectionURL(resource domain.Resource) string {
	return c.resolve(url.PathEscape(resource.String()) + "/")
}

func (c *Client) itemURL(resource domain.Resource, id int64) string {
	return c.resolve(url.PathEscape(resource.String()) + "/" + strconv.FormatInt(id, 10))
}

func (c *Client) resolve(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")}).String()
}

func (c *Client) do(
	ctx context.Context, method, target string, body any, out any, opts driven.RequestOptions,
) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", domain.ErrInvalidInput, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.IdempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, opts.IdempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimited(resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        target,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrRemote, method, target, err)
	}
	return nil
}

func decodeList(raw json.RawMessage) ([]domain.Fields, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []domain.Fields
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: decode list: %v", domain.ErrRemote, err)
		}
		return items, nil
	}

	var page struct {
		Results []domain.Fields `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("%w: decode list: %v", domain.ErrRemote, err)
	}
	return page.Results, nil
}
